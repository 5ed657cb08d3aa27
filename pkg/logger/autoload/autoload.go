// Package autoload initializes the global logger from LOG_* environment
// variables as a side effect of being imported.
package autoload

import (
	configx "github.com/tanpawarit/Chative-Commerce-Governance/pkg/config"
	logx "github.com/tanpawarit/Chative-Commerce-Governance/pkg/logger"
)

func init() {
	logx.Init(*configx.MustNew[logx.Config]("LOG"))
}
