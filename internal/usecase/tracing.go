package usecase

import "go.opentelemetry.io/otel"

var tracer = otel.Tracer("github.com/luisbfsousa/mect-sub001/internal/usecase")
