// Package udc implements the commissioner side of user-directed
// commissioning (UDC).
//
// A device that wants to be commissioned sends an unsolicited, unencrypted
// IdentificationDeclaration datagram carrying its mDNS instance name. The
// Server tracks one ClientState per announced instance name in a bounded
// ClientTable, asks an InstanceNameResolver to locate the device on first
// sight, and hands the resolved node to a UserConfirmationProvider once the
// resolution arrives.
//
// # Session Lifecycle
//
//	(first announcement) -> DiscoveringNode -> PromptingUser -> ...
//
// Only the DiscoveringNode -> PromptingUser transition is driven by the
// Server. Later stages call SetClientProcessingState.
//
// Records age out ClientTimeout after their last activity. Repeated
// announcements refresh activity and never re-trigger resolution.
//
// # Concurrency
//
// All Server entry points are safe for concurrent use. The ClientTable
// serializes find-or-create and compare-and-set under one mutex, and
// collaborators are always called outside it.
package udc
