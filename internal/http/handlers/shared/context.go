package shared

import (
	"github.com/clickpulse/internal/clientip"

	"github.com/gin-gonic/gin"
)

const (
	clientIPKey        = "client_ip"
	viaTrustedProxyKey = "via_trusted_proxy"
)

// SetClientResolution 写入中间件解析出的访客 IP。
func SetClientResolution(c *gin.Context, res clientip.Resolution) {
	c.Set(clientIPKey, res.IP)
	c.Set(viaTrustedProxyKey, res.ViaTrustedProxy)
}

// ClientResolution 读取访客 IP，未经过中间件时回退到 gin 的 ClientIP。
func ClientResolution(c *gin.Context) clientip.Resolution {
	if c == nil {
		return clientip.Resolution{IP: clientip.Loopback}
	}
	if value, ok := c.Get(clientIPKey); ok {
		if ip, ok := value.(string); ok && ip != "" {
			return clientip.Resolution{IP: ip, ViaTrustedProxy: c.GetBool(viaTrustedProxyKey)}
		}
	}
	ip := clientip.Normalize(c.ClientIP())
	if ip == "" {
		ip = clientip.Loopback
	}
	return clientip.Resolution{IP: ip}
}
