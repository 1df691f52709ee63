package aircon

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"
)

// Protocol defaults.
const (
	DefaultBroadcastAddr = "255.255.255.255:7000"
	DefaultDiscoverWait  = 5 * time.Second
	DefaultTimeout       = 5 * time.Second
)

// packet is the wire format for all unit exchanges. Fields are pointers
// where absence must be distinguishable from a zero value.
type packet struct {
	Type  string   `json:"t"`
	ID    string   `json:"id,omitempty"`
	Name  string   `json:"name,omitempty"`
	Power *bool    `json:"power,omitempty"`
	Temp  *float64 `json:"temp,omitempty"`
	Mode  string   `json:"mode,omitempty"`
}

// Discover broadcasts a scan packet and collects unit announcements until
// wait elapses. Returns the units that replied, possibly none. bcast may
// be empty to use the default broadcast address.
func Discover(ctx context.Context, bcast string, wait time.Duration) ([]DeviceInfo, error) {
	if bcast == "" {
		bcast = DefaultBroadcastAddr
	}
	if wait <= 0 {
		wait = DefaultDiscoverWait
	}

	dst, err := net.ResolveUDPAddr("udp4", bcast)
	if err != nil {
		return nil, fmt.Errorf("resolve broadcast addr %s: %w", bcast, err)
	}

	conn, err := net.ListenUDP("udp4", nil)
	if err != nil {
		return nil, fmt.Errorf("open discovery socket: %w", err)
	}
	defer conn.Close()

	scan, err := json.Marshal(packet{Type: "scan"})
	if err != nil {
		return nil, fmt.Errorf("marshal scan: %w", err)
	}
	if _, err := conn.WriteToUDP(scan, dst); err != nil {
		return nil, fmt.Errorf("send scan: %w", err)
	}

	deadline := time.Now().Add(wait)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	conn.SetReadDeadline(deadline)

	var found []DeviceInfo
	seen := make(map[string]bool)
	buf := make([]byte, 1024)
	for {
		n, src, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				return found, nil // wait elapsed
			}
			return found, fmt.Errorf("read announcement: %w", err)
		}

		var p packet
		if err := json.Unmarshal(buf[:n], &p); err != nil || p.Type != "hello" {
			continue // not an announcement, ignore
		}
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		found = append(found, DeviceInfo{ID: p.ID, Name: p.Name, Addr: src.String()})
	}
}

// RealUnit talks to an actual A/C unit over a connected UDP socket.
type RealUnit struct {
	info    DeviceInfo
	conn    *net.UDPConn
	timeout time.Duration
}

// Bind opens a control socket to the unit and performs the bind
// handshake. The returned unit is ready for state reads and pushes.
func Bind(ctx context.Context, info DeviceInfo, timeout time.Duration) (*RealUnit, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	addr, err := net.ResolveUDPAddr("udp4", info.Addr)
	if err != nil {
		return nil, fmt.Errorf("resolve unit addr %s: %w", info.Addr, err)
	}
	conn, err := net.DialUDP("udp4", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("dial unit %s: %w", info.Addr, err)
	}

	u := &RealUnit{info: info, conn: conn, timeout: timeout}
	if _, err := u.exchange(ctx, packet{Type: "bind", ID: info.ID}, "bindok"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("bind %s: %w", info.Addr, err)
	}
	return u, nil
}

// Info returns the identity of the bound unit.
func (u *RealUnit) Info() DeviceInfo {
	return u.info
}

// ReadState queries the unit for its reported state.
func (u *RealUnit) ReadState(ctx context.Context) (State, error) {
	p, err := u.exchange(ctx, packet{Type: "status"}, "state")
	if err != nil {
		return State{}, fmt.Errorf("read state: %w", err)
	}
	if p.Power == nil || p.Temp == nil {
		return State{}, fmt.Errorf("read state: incomplete report %+v", p)
	}
	return State{Power: *p.Power, TargetTemp: *p.Temp, Mode: Mode(p.Mode)}, nil
}

// PushState sends a desired state and waits for the acknowledgement.
func (u *RealUnit) PushState(ctx context.Context, s State) error {
	power := s.Power
	temp := s.TargetTemp
	req := packet{Type: "cmd", Power: &power, Temp: &temp, Mode: string(s.Mode)}
	if _, err := u.exchange(ctx, req, "ack"); err != nil {
		return fmt.Errorf("push state: %w", err)
	}
	return nil
}

// Close releases the control socket.
func (u *RealUnit) Close() error {
	return u.conn.Close()
}

// exchange sends a request datagram and reads one reply of the expected
// type, bounded by the unit timeout (or the context deadline if sooner).
func (u *RealUnit) exchange(ctx context.Context, req packet, wantType string) (packet, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return packet{}, fmt.Errorf("marshal %s: %w", req.Type, err)
	}
	if _, err := u.conn.Write(data); err != nil {
		return packet{}, fmt.Errorf("send %s: %w", req.Type, err)
	}

	deadline := time.Now().Add(u.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	u.conn.SetReadDeadline(deadline)

	buf := make([]byte, 1024)
	for {
		n, err := u.conn.Read(buf)
		if err != nil {
			return packet{}, fmt.Errorf("await %s: %w", wantType, err)
		}

		var p packet
		if err := json.Unmarshal(buf[:n], &p); err != nil {
			continue // garbage datagram, keep waiting
		}
		if p.Type != wantType {
			continue // stale reply from an earlier exchange
		}
		return p, nil
	}
}
