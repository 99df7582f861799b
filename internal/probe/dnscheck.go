package probe

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"
)

// DNS diagnosis classes.
const (
	DNSResolves      = "RESOLVES"
	DNSNoARecord     = "NO_A_RECORD"
	DNSNXDomain      = "NXDOMAIN"
	DNSServfail      = "SERVFAIL_or_TIMEOUT"
	DNSInvalidName   = "INVALID_NAME"
	defaultDNSConfig = "/etc/resolv.conf"
)

// DefaultDNSTimeout bounds each DNS query.
const DefaultDNSTimeout = 3 * time.Second

type DNSStatus struct {
	Domain        string
	HasAOrAAAA    bool
	IPs           []net.IP
	HasNS         bool
	Nameservers   []string
	Class         string
	ResolverError string
}

// DNSChecker explains connection failures by asking a resolver directly.
type DNSChecker struct {
	server string
	client *dns.Client
}

// NewDNSChecker queries server (host:port). An empty server means the first
// nameserver from /etc/resolv.conf.
func NewDNSChecker(server string, timeout time.Duration) (*DNSChecker, error) {
	if server == "" {
		cc, err := dns.ClientConfigFromFile(defaultDNSConfig)
		if err != nil {
			return nil, fmt.Errorf("dns: read %s: %w", defaultDNSConfig, err)
		}
		if len(cc.Servers) == 0 {
			return nil, fmt.Errorf("dns: no nameservers in %s", defaultDNSConfig)
		}
		server = net.JoinHostPort(cc.Servers[0], cc.Port)
	}
	if timeout <= 0 {
		timeout = DefaultDNSTimeout
	}
	return &DNSChecker{
		server: server,
		client: &dns.Client{Timeout: timeout},
	}, nil
}

// Check classifies how domain resolves. It never returns an error; resolver
// failures end up in ResolverError and the SERVFAIL_or_TIMEOUT class.
func (d *DNSChecker) Check(ctx context.Context, domain string) DNSStatus {
	s := DNSStatus{Domain: strings.TrimSpace(domain)}
	if s.Domain == "" || strings.Contains(s.Domain, "://") {
		s.Class = DNSInvalidName
		return s
	}
	if ip := net.ParseIP(s.Domain); ip != nil {
		s.HasAOrAAAA = true
		s.IPs = []net.IP{ip}
		s.Class = DNSResolves
		return s
	}

	nxdomain := false
	for _, qt := range []uint16{dns.TypeA, dns.TypeAAAA} {
		resp, err := d.exchange(ctx, s.Domain, qt)
		if err != nil {
			s.ResolverError = err.Error()
			continue
		}
		if resp.Rcode == dns.RcodeNameError {
			nxdomain = true
			continue
		}
		for _, rr := range resp.Answer {
			switch v := rr.(type) {
			case *dns.A:
				s.IPs = append(s.IPs, v.A)
			case *dns.AAAA:
				s.IPs = append(s.IPs, v.AAAA)
			}
		}
	}
	s.HasAOrAAAA = len(s.IPs) > 0

	if resp, err := d.exchange(ctx, s.Domain, dns.TypeNS); err == nil {
		for _, rr := range resp.Answer {
			if ns, ok := rr.(*dns.NS); ok {
				s.Nameservers = append(s.Nameservers, strings.TrimSuffix(ns.Ns, "."))
			}
		}
		s.HasNS = len(s.Nameservers) > 0
	}

	switch {
	case s.HasAOrAAAA:
		s.Class = DNSResolves
	case s.HasNS:
		s.Class = DNSNoARecord
	case nxdomain:
		s.Class = DNSNXDomain
	case s.ResolverError != "":
		s.Class = DNSServfail
	default:
		s.Class = DNSNoARecord
	}
	return s
}

func (d *DNSChecker) exchange(ctx context.Context, name string, qtype uint16) (*dns.Msg, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(name), qtype)
	msg.RecursionDesired = true

	resp, _, err := d.client.ExchangeContext(ctx, msg, d.server)
	if err != nil {
		return nil, fmt.Errorf("dns %s %s: %w", dns.TypeToString[qtype], name, err)
	}
	if resp.Rcode != dns.RcodeSuccess && resp.Rcode != dns.RcodeNameError {
		return nil, fmt.Errorf("dns %s %s: rcode %s", dns.TypeToString[qtype], name, dns.RcodeToString[resp.Rcode])
	}
	return resp, nil
}
