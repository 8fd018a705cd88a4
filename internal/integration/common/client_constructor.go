package common

import (
	"github.com/futig/study-helper/internal/config"
	pkgHTTP "github.com/futig/study-helper/pkg/http"
	"go.uber.org/zap"
)

// NewBaseConnector builds a JSON connector for cfg. auth sets the
// credential transport; nil means bearer auth with cfg.Token.
func NewBaseConnector(cfg config.HTTPClientConfig, logger *zap.Logger, auth pkgHTTP.HttpOpts) *pkgHTTP.Connector {
	connCfg := &pkgHTTP.ConnectorConfig{
		Logger:  logger,
		BaseURL: cfg.Url,
	}

	if auth == nil {
		auth = pkgHTTP.WithAuthToken(cfg.Token)
	}

	return pkgHTTP.NewConnector(
		connCfg,
		pkgHTTP.WithRequestTimeout(cfg.RequestTimeout),
		pkgHTTP.WithConnClientTimeout(cfg.ConnTimeout),
		pkgHTTP.WithClientKeepAlive(cfg.KeepAlive),
		pkgHTTP.WithIdleConnTimeout(cfg.IdleConnTimeout),
		pkgHTTP.WithResponseHeaderTimeout(cfg.ResponseHeaderTimeout),
		auth,
		pkgHTTP.WithRequestLogging(),
	)
}
