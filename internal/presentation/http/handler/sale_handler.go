package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jkorir/sellpoint-api/internal/application/service"
	"github.com/jkorir/sellpoint-api/internal/domain/entity"
	"github.com/jkorir/sellpoint-api/internal/domain/enum"
	"github.com/jkorir/sellpoint-api/internal/domain/repository"
	"github.com/jkorir/sellpoint-api/internal/presentation/http/dto/request"
	"github.com/jkorir/sellpoint-api/internal/presentation/http/dto/response"
	"github.com/jkorir/sellpoint-api/pkg/pagination"
)

// SaleHandler handles sale history HTTP requests
type SaleHandler struct {
	saleService    *service.SaleService
	receiptService *service.ReceiptService
}

// NewSaleHandler creates a new sale handler
func NewSaleHandler(saleService *service.SaleService, receiptService *service.ReceiptService) *SaleHandler {
	return &SaleHandler{
		saleService:    saleService,
		receiptService: receiptService,
	}
}

// List handles listing sale history with filters
func (h *SaleHandler) List(c *gin.Context) {
	var req request.ListSalesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	params := &repository.SaleFilterParams{
		Pagination: &pagination.PaginationParams{Page: req.Page, PerPage: req.PerPage},
		Search:     req.Search,
		CreditOnly: req.CreditOnly,
	}
	if req.Status != "" {
		if status, ok := enum.ParseSaleStatus(req.Status); ok {
			params.Status = &status
		}
	}
	if req.CustomerID != "" {
		if customerID, err := uuid.Parse(req.CustomerID); err == nil {
			params.CustomerID = &customerID
		}
	}
	if req.StartDate != "" {
		if start, err := time.Parse("2006-01-02", req.StartDate); err == nil {
			params.StartDate = &start
		}
	}
	if req.EndDate != "" {
		if end, err := time.Parse("2006-01-02", req.EndDate); err == nil {
			// Inclusive end of day
			end = end.Add(24*time.Hour - time.Nanosecond)
			params.EndDate = &end
		}
	}

	result, err := h.saleService.ListSales(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, 200, "Sales retrieved", result)
}

// Get handles retrieving a single sale with its items
func (h *SaleHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid sale ID")
		return
	}

	sale, err := h.saleService.GetSale(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Sale retrieved", sale)
}

// PayDue applies a payment against an outstanding credit sale
func (h *SaleHandler) PayDue(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid sale ID")
		return
	}
	var req request.PayDueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid payment payload")
		return
	}

	sale, err := h.saleService.PayDue(c.Request.Context(), id, &service.PayDueInput{Amount: req.Amount})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Payment applied", sale)
}

// Void cancels a sale, restoring stock and releasing credit
func (h *SaleHandler) Void(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid sale ID")
		return
	}

	sale, err := h.saleService.VoidSale(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Sale voided", sale)
}

// Receipt reprints a receipt for a persisted sale
func (h *SaleHandler) Receipt(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid sale ID")
		return
	}
	var req request.ReceiptRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid receipt parameters")
		return
	}

	sale, err := h.saleService.GetSale(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	doc, err := h.receiptService.ComposeFromSale(sale, entity.ReceiptLayout(req.Layout))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Receipt composed", doc)
}
