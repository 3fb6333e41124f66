package util

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// ClientIP : адрес соединения без порта. X-Forwarded-For присылает клиент,
// поэтому здесь он не читается (см. TrustedProxies).
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// TrustedProxies : сети прокси, которым разрешено передавать X-Forwarded-For
type TrustedProxies struct {
	prefixes []netip.Prefix
}

// ParseTrustedProxies : принимает CIDR или одиночные адреса
func ParseTrustedProxies(entries []string) (*TrustedProxies, error) {
	proxies := &TrustedProxies{}
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		if strings.Contains(entry, "/") {
			prefix, err := netip.ParsePrefix(entry)
			if err != nil {
				return nil, fmt.Errorf("некорректная сеть доверенного прокси %q: %w", entry, err)
			}
			proxies.prefixes = append(proxies.prefixes, prefix.Masked())
			continue
		}

		addr, err := netip.ParseAddr(entry)
		if err != nil {
			return nil, fmt.Errorf("некорректный адрес доверенного прокси %q: %w", entry, err)
		}
		proxies.prefixes = append(proxies.prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return proxies, nil
}

func (p *TrustedProxies) trusted(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range p.prefixes {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// ClientIP : если соединение пришло от доверенного прокси, X-Forwarded-For читается
// справа налево до первого недоверенного адреса. Левые значения клиент может подделать.
func (p *TrustedProxies) ClientIP(r *http.Request) string {
	remote := ClientIP(r)
	if p == nil || len(p.prefixes) == 0 || !p.trusted(remote) {
		return remote
	}

	hops := strings.Split(strings.Join(r.Header.Values("X-Forwarded-For"), ","), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if _, err := netip.ParseAddr(hop); err != nil {
			// мусор в цепочке: дальше влево доверять нечему
			return remote
		}
		if !p.trusted(hop) {
			return hop
		}
		remote = hop
	}
	return remote
}
