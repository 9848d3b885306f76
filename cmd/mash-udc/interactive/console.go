// Package interactive provides the operator consent console for mash-udc.
package interactive

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/chzyer/readline"
	"github.com/mash-protocol/mash-udc/pkg/discovery"
	"github.com/mash-protocol/mash-udc/pkg/udc"
)

// Server is the part of udc.Server the console drives.
type Server interface {
	Table() *udc.ClientTable
	SetClientProcessingState(instanceName string, state udc.ProcessingState)
}

var _ Server = (*udc.Server)(nil)

// Console asks an operator to approve or decline resolved devices.
type Console struct {
	rl  *readline.Instance
	out io.Writer

	mu      sync.Mutex
	server  Server
	pending map[string]*discovery.CommissionableService
}

// New creates a console reading from the terminal.
func New() (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "udc> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	c := newConsole(rl.Stdout())
	c.rl = rl
	return c, nil
}

func newConsole(out io.Writer) *Console {
	return &Console{
		out:     out,
		pending: make(map[string]*discovery.CommissionableService),
	}
}

// Attach sets the server whose clients the console approves or declines.
func (c *Console) Attach(server Server) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.server = server
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for log output to avoid interfering with the command prompt.
func (c *Console) Stdout() io.Writer {
	return c.out
}

// OnUserDirectedCommissioningRequest queues a resolved device for a decision.
func (c *Console) OnUserDirectedCommissioningRequest(node *discovery.CommissionableService) {
	c.mu.Lock()
	c.prunePendingLocked()
	c.pending[node.InstanceName] = node
	c.mu.Unlock()

	fmt.Fprintf(c.out, "\n>>> Commissioning request: %s (%s)\n", node.InstanceName, node.DisplayName())
	fmt.Fprintf(c.out, "    Host: %s:%d  Discriminator: %d\n", node.Host, node.Port, node.Discriminator)
	if len(node.Addresses) > 0 {
		fmt.Fprintf(c.out, "    Addresses: %s\n", strings.Join(node.Addresses, ", "))
	}
	fmt.Fprintf(c.out, "    Type 'approve %s' or 'decline %s'\n", node.InstanceName, node.InstanceName)
}

var _ udc.UserConfirmationProvider = (*Console)(nil)

// Run starts the interactive command loop.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc) {
	defer c.rl.Close()

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(c.out, "Exiting...")
			cancel()
			return
		}

		if quit := c.execute(line); quit {
			cancel()
			return
		}
	}
}

// execute runs one command line and reports whether the console should exit.
func (c *Console) execute(line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return false
	}

	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	// Instance names may contain spaces, so the argument is the rest of the line.
	arg := strings.TrimSpace(input[len(parts[0]):])

	switch cmd {
	case "help", "?":
		c.printHelp()

	case "list", "ls", "clients":
		c.cmdList()

	case "pending", "p":
		c.cmdPending()

	case "approve", "a":
		c.cmdDecide(arg, udc.StateObtainingOnboardingPayload)

	case "decline", "d":
		c.cmdDecide(arg, udc.StateUserDeclined)

	case "quit", "exit", "q":
		fmt.Fprintln(c.out, "Exiting...")
		return true

	default:
		fmt.Fprintf(c.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return false
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.out, `
UDC Commands:
    list                 - List tracked clients
    pending              - List devices waiting for a decision
    approve <instance>   - Approve commissioning of a device
    decline <instance>   - Decline commissioning of a device
    help                 - Show this help
    quit                 - Exit`)
}

func (c *Console) cmdList() {
	c.mu.Lock()
	server := c.server
	c.mu.Unlock()
	if server == nil {
		fmt.Fprintln(c.out, "Not attached to a server")
		return
	}

	clients := server.Table().Snapshot()
	if len(clients) == 0 {
		fmt.Fprintln(c.out, "No tracked clients")
		return
	}

	fmt.Fprintf(c.out, "\nClients (%d):\n", len(clients))
	fmt.Fprintln(c.out, "-------------------------------------------")
	for _, cl := range clients {
		fmt.Fprintf(c.out, "  %-16s  %-28s  %s\n", cl.InstanceName, cl.State, cl.PeerAddress)
		fmt.Fprintf(c.out, "      Last seen: %s  Expires: %s\n",
			cl.LastActive.Format("15:04:05"), cl.ExpirationTime.Format("15:04:05"))
	}
}

func (c *Console) cmdPending() {
	c.mu.Lock()
	c.prunePendingLocked()
	names := make([]string, 0, len(c.pending))
	for name := range c.pending {
		names = append(names, name)
	}
	c.mu.Unlock()

	if len(names) == 0 {
		fmt.Fprintln(c.out, "No pending requests")
		return
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(c.out, "  %s\n", name)
	}
}

func (c *Console) cmdDecide(name string, state udc.ProcessingState) {
	if name == "" {
		fmt.Fprintln(c.out, "Usage: approve|decline <instance>")
		return
	}

	c.mu.Lock()
	c.prunePendingLocked()
	server := c.server
	_, ok := c.pending[name]
	if ok {
		delete(c.pending, name)
	}
	c.mu.Unlock()

	if !ok {
		fmt.Fprintf(c.out, "No pending request for %s\n", name)
		return
	}
	if server == nil {
		fmt.Fprintln(c.out, "Not attached to a server")
		return
	}

	server.SetClientProcessingState(name, state)
	fmt.Fprintf(c.out, "%s -> %s\n", name, state)
}

// prunePendingLocked drops requests whose client has expired, was evicted,
// or has left StatePromptingUser. Caller holds c.mu.
func (c *Console) prunePendingLocked() {
	if c.server == nil {
		return
	}
	table := c.server.Table()
	for name := range c.pending {
		rec, ok := table.Find(name)
		if !ok || rec.State != udc.StatePromptingUser {
			delete(c.pending, name)
		}
	}
}
