package handlers

import (
	"go.uber.org/zap"

	"tablepay-gateway/internal/config"
	"tablepay-gateway/internal/payment"
	"tablepay-gateway/internal/session"
	"tablepay-gateway/internal/upstream"
)

type Handler struct {
	Upstream *upstream.Client
	Registry *session.Registry
	Flow     *payment.Flow
	Logger   *zap.Logger
	Config   config.Config
}
