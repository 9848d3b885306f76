// Package discovery implements the mDNS/DNS-SD side of user-directed
// commissioning.
//
// A device that wants to be commissioned advertises a commissionable
// service (_mashc._udp) and then announces its instance name to a
// commissioner over UDP. The commissioner uses this package to resolve that
// instance name back into a reachable host, port and address list.
//
// # Commissionable Discovery (_mashc._udp)
//
// TXT records: D (discriminator, required), cat (device categories,
// required), serial, brand, model and DN (device name), all optional.
//
// # Resolution
//
// Resolver adapts a Browser to the fire-and-forget resolver contract of the
// UDC server: FindCommissionableNode returns immediately and the result is
// delivered later through the OnFound callback.
//
// # Device Categories
//
// Categories are aligned with EEBUS "SHIP Requirements for Installation Process":
//   - 1: Grid Connection Point Hub (GCPH)
//   - 2: Energy Management System (EMS)
//   - 3: E-mobility (EVSE, wallbox)
//   - 4: HVAC (heat pump, AC)
//   - 5: Inverter (PV, battery, hybrid)
//   - 6: Domestic appliance
//   - 7: Metering
package discovery
