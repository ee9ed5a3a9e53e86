// Package clientip 访客 IP 的规范化、公网判断与调用方网段白名单。
package clientip

import (
	"fmt"
	"net"
	"strings"
)

// Loopback 无法解析时的兜底地址
const Loopback = "127.0.0.1"

// DefaultHeader 默认读取的代理头
const DefaultHeader = "CF-Connecting-IP"

// Resolution 解析结果
type Resolution struct {
	IP string
	// ViaTrustedProxy 连接来自可信代理且代理头有效
	ViaTrustedProxy bool
}

// Allowlist 网段白名单
type Allowlist struct {
	nets []*net.IPNet
}

// NewAllowlist 解析网段列表，单个 IP 视为主机网段，任一条目非法时返回错误
func NewAllowlist(cidrs []string) (*Allowlist, error) {
	nets := make([]*net.IPNet, 0, len(cidrs))
	for _, raw := range cidrs {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if !strings.Contains(raw, "/") {
			if ip := net.ParseIP(raw); ip != nil {
				bits := 32
				if ip.To4() == nil {
					bits = 128
				}
				raw = fmt.Sprintf("%s/%d", raw, bits)
			}
		}
		_, ipNet, err := net.ParseCIDR(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid cidr %q: %w", raw, err)
		}
		nets = append(nets, ipNet)
	}
	return &Allowlist{nets: nets}, nil
}

// Contains 判断地址（可带端口）是否落在白名单内
func (a *Allowlist) Contains(addr string) bool {
	if a == nil {
		return false
	}
	ip := net.ParseIP(hostOnly(addr))
	if ip == nil {
		return false
	}
	for _, n := range a.nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// Normalize 校验并规范化 IP 字符串，非法时返回空串
func Normalize(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	// 个别代理会在头里带上端口或 IPv6 方括号
	if host, _, err := net.SplitHostPort(raw); err == nil {
		raw = host
	}
	raw = strings.TrimSuffix(strings.TrimPrefix(raw, "["), "]")
	ip := net.ParseIP(raw)
	if ip == nil {
		return ""
	}
	return ip.String()
}

// IsPublic 判断是否为公网地址
func IsPublic(raw string) bool {
	ip := net.ParseIP(strings.TrimSpace(raw))
	if ip == nil {
		return false
	}
	return !(ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsMulticast())
}

func hostOnly(addr string) string {
	addr = strings.TrimSpace(addr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
