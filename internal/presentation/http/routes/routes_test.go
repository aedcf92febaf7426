package routes

import (
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jkorir/sellpoint-api/internal/config"
	"github.com/jkorir/sellpoint-api/internal/presentation/http/handler"
	"github.com/jkorir/sellpoint-api/pkg/utils"
)

func TestSetupRegistersCheckoutRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := &Handlers{
		Auth:     handler.NewAuthHandler(nil),
		Product:  handler.NewProductHandler(nil),
		Customer: handler.NewCustomerHandler(nil),
		Checkout: handler.NewCheckoutHandler(nil, nil),
		Sale:     handler.NewSaleHandler(nil, nil),
		Printer:  handler.NewPrinterHandler(nil),
	}
	router := Setup(h, &Deps{
		JWTManager: utils.NewJWTManager("test-secret", time.Hour),
		Cfg:        &config.Config{},
	})

	registered := make(map[string]bool)
	for _, r := range router.Routes() {
		registered[r.Method+" "+r.Path] = true
	}

	for _, want := range []string{
		"POST /api/v1/checkout/sessions",
		"GET /api/v1/checkout/sessions/:id",
		"DELETE /api/v1/checkout/sessions/:id",
		"POST /api/v1/checkout/sessions/:id/confirm",
		// Composing a receipt is a read; printing one is a separate POST
		"GET /api/v1/checkout/sessions/:id/receipt",
		"POST /api/v1/checkout/sessions/:id/receipt/print",
		"GET /api/v1/sales/:id/receipt",
	} {
		if !registered[want] {
			t.Errorf("route %q is not registered", want)
		}
	}
}
