package metrics

import "go.uber.org/fx"

// Module provides the engine metrics recorder.
var Module = fx.Provide(New)
