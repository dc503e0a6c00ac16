package identity

import "go.uber.org/fx"

// Module provides the role policy.
var Module = fx.Provide(DefaultPolicy)
