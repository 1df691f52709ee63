package sensor

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Defaults for the SNMP probe query.
const (
	DefaultCommunity = "public"
	DefaultOID       = "1.3.6.1.4.1.17095.5.2.0"
	DefaultTimeout   = 5 * time.Second
)

// valueRe extracts the first numeric token after a typed-value prefix in
// an snmpget response, e.g. `iso.3.6.1.4.1.17095.5.2.0 = STRING: "23.4"`.
var valueRe = regexp.MustCompile(`(?:STRING|INTEGER|GAUGE|Counter32):\s+"?([0-9.]+)`)

// SNMPReader reads temperature from an SNMP probe by shelling out to
// snmpget. Keeping the net-snmp binary as the transport means the
// reader works against whatever MIBs and transports the host's snmpget
// supports without linking an SNMP stack.
type SNMPReader struct {
	host      string
	community string
	oid       string
	timeout   time.Duration
}

// NewSNMPReader creates a reader querying the given host. Empty
// community/oid and a zero timeout select the defaults.
func NewSNMPReader(host, community, oid string, timeout time.Duration) *SNMPReader {
	if community == "" {
		community = DefaultCommunity
	}
	if oid == "" {
		oid = DefaultOID
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &SNMPReader{host: host, community: community, oid: oid, timeout: timeout}
}

// Read runs snmpget and parses the temperature out of its response.
func (r *SNMPReader) Read(ctx context.Context) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "snmpget", "-v", "2c", "-c", r.community, r.host, r.oid)
	out, err := cmd.Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok && len(ee.Stderr) > 0 {
			return 0, fmt.Errorf("snmpget %s: %s", r.host, strings.TrimSpace(string(ee.Stderr)))
		}
		return 0, fmt.Errorf("snmpget %s: %w", r.host, err)
	}

	return parseResponse(out)
}

// Close is a no-op; each Read spawns its own process.
func (r *SNMPReader) Close() error {
	return nil
}

// parseResponse extracts the numeric value from an snmpget response.
func parseResponse(out []byte) (float64, error) {
	m := valueRe.FindSubmatch(out)
	if m == nil {
		return 0, fmt.Errorf("no numeric value in response %q", strings.TrimSpace(string(out)))
	}
	v, err := strconv.ParseFloat(string(m[1]), 64)
	if err != nil {
		return 0, fmt.Errorf("parse value %q: %w", m[1], err)
	}
	return v, nil
}
