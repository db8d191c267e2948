package baseurl

import (
	"errors"
	"regexp"

	v1 "k8s.io/api/core/v1"
)

// ErrNoAddress is returned when no candidate yields an address.
var ErrNoAddress = errors.New("service has no reachable address")

// ipPattern matches four dot-separated groups of one to three digits anywhere
// in the string. Octet ranges are not checked.
var ipPattern = regexp.MustCompile(`\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}`)

type IngressEntry struct {
	IP       string
	Hostname string
}

// Snapshot is the part of a Service the resolver looks at.
type Snapshot struct {
	ClusterIP string
	Ingress   []IngressEntry
}

// SnapshotFromService copies the addresses of svc into a Snapshot.
func SnapshotFromService(svc *v1.Service) *Snapshot {
	snapshot := &Snapshot{
		ClusterIP: svc.Spec.ClusterIP,
	}

	for _, ingress := range svc.Status.LoadBalancer.Ingress {
		snapshot.Ingress = append(snapshot.Ingress, IngressEntry{
			IP:       ingress.IP,
			Hostname: ingress.Hostname,
		})
	}

	return snapshot
}

// Candidate returns an address for the snapshot, or false when it has none.
type Candidate struct {
	Name   string
	Lookup func(s *Snapshot) (string, bool)
}

// Resolver evaluates its candidates in order. The last candidate that
// returns a non-empty address wins.
type Resolver struct {
	Candidates []Candidate
}

// Resolution is the chosen address and the candidate that supplied it.
type Resolution struct {
	Address string
	Source  string
}

// New returns a Resolver with the default precedence: cluster IP, load
// balancer IP, load balancer hostname, then domainOverride if non-empty.
func New(domainOverride string) *Resolver {
	return &Resolver{
		Candidates: []Candidate{
			{Name: "cluster-ip", Lookup: clusterIP},
			{Name: "load-balancer-ip", Lookup: loadBalancerIP},
			{Name: "load-balancer-hostname", Lookup: loadBalancerHostname},
			{Name: "domain-override", Lookup: override(domainOverride)},
		},
	}
}

func (r *Resolver) Resolve(s *Snapshot) (*Resolution, error) {
	var resolution *Resolution

	for _, candidate := range r.Candidates {
		address, ok := candidate.Lookup(s)
		if !ok || address == "" {
			continue
		}

		resolution = &Resolution{
			Address: address,
			Source:  candidate.Name,
		}
	}

	if resolution == nil {
		return nil, ErrNoAddress
	}

	return resolution, nil
}

// IsIPLike reports whether s contains something shaped like a dotted-quad address.
func IsIPLike(s string) bool {
	return ipPattern.MatchString(s)
}

func clusterIP(s *Snapshot) (string, bool) {
	if s.ClusterIP == v1.ClusterIPNone {
		return "", false
	}

	return s.ClusterIP, s.ClusterIP != ""
}

func loadBalancerIP(s *Snapshot) (string, bool) {
	if len(s.Ingress) == 0 {
		return "", false
	}

	ip := s.Ingress[0].IP
	if ip == "" || !IsIPLike(ip) {
		return "", false
	}

	return ip, true
}

func loadBalancerHostname(s *Snapshot) (string, bool) {
	if len(s.Ingress) == 0 {
		return "", false
	}

	hostname := s.Ingress[0].Hostname

	return hostname, hostname != ""
}

func override(domain string) func(*Snapshot) (string, bool) {
	return func(*Snapshot) (string, bool) {
		return domain, domain != ""
	}
}
