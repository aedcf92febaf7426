package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/jkorir/sellpoint-api/internal/application/service"
	"github.com/jkorir/sellpoint-api/internal/presentation/http/dto/response"
)

// PrinterHandler handles receipt printer HTTP requests
type PrinterHandler struct {
	receiptService *service.ReceiptService
}

// NewPrinterHandler creates a new printer handler
func NewPrinterHandler(receiptService *service.ReceiptService) *PrinterHandler {
	return &PrinterHandler{receiptService: receiptService}
}

// Status reports printer connectivity and the default layout
func (h *PrinterHandler) Status(c *gin.Context) {
	response.OK(c, "Printer status", h.receiptService.Status())
}

// TestPrint sends a short test page to the printer
func (h *PrinterHandler) TestPrint(c *gin.Context) {
	if err := h.receiptService.TestPrint(); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Test page sent", nil)
}
