package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"paylink-core/internal/handler/request"
	"paylink-core/internal/handler/response"
	"paylink-core/internal/service"
	"paylink-core/pkg/errno"
	"paylink-core/pkg/validator"
)

// LinkHandler 支付链接 HTTP 接口
// 薄层: 绑定参数 -> 调 Service -> 统一响应, 不承载任何业务规则
type LinkHandler struct {
	links  service.LinkManager
	claims service.ClaimOrchestrator
}

func NewLinkHandler(links service.LinkManager, claims service.ClaimOrchestrator) *LinkHandler {
	return &LinkHandler{links: links, claims: claims}
}

// CreateLink 创建支付链接
// @Summary 创建支付链接
// @Description 创建链接元数据, 返回 link_id; 入金确认前链接不可领取
// @Tags Link
// @Accept json
// @Produce json
// @Param request body request.CreateLinkRequest true "Create Request"
// @Success 200 {object} response.Response
// @Router /api/v1/links [post]
func (h *LinkHandler) CreateLink(c *gin.Context) {
	var req request.CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errno.ErrBind.WithMessage(validator.GetErrorMsg(err)))
		return
	}

	link, err := h.links.CreateLink(c.Request.Context(), req.GrossAmount, req.AssetType)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"link_id": link.ID, "status": link.Status})
}

// RecordDeposit 记录外部已确认的入金
// @Summary 记录入金凭证
// @Description 同一凭证重试幂等; 不同凭证返回 409
// @Tags Link
// @Accept json
// @Produce json
// @Param id path string true "Link ID"
// @Param request body request.RecordDepositRequest true "Deposit Request"
// @Success 200 {object} response.Response
// @Router /api/v1/links/{id}/deposit [post]
func (h *LinkHandler) RecordDeposit(c *gin.Context) {
	var req request.RecordDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errno.ErrBind.WithMessage(validator.GetErrorMsg(err)))
		return
	}

	linkID := c.Param("id")
	if err := h.links.RecordDeposit(c.Request.Context(), linkID, req.DepositRef, req.GrossAmount); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"link_id": linkID, "deposit_ref": req.DepositRef})
}

// ClaimLink 领取链接
// @Summary 领取支付链接
// @Description 恰好一次: 并发领取时只有一个请求成功, 其余返回 409
// @Tags Link
// @Accept json
// @Produce json
// @Param id path string true "Link ID"
// @Param request body request.ClaimLinkRequest true "Claim Request"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response "已被领取"
// @Failure 502 {object} response.Response "网关失败, 已回滚, 可重试"
// @Router /api/v1/links/{id}/claim [post]
func (h *LinkHandler) ClaimLink(c *gin.Context) {
	var req request.ClaimLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errno.ErrBind.WithMessage(validator.GetErrorMsg(err)))
		return
	}

	result, err := h.claims.ClaimLink(c.Request.Context(), c.Param("id"), req.RecipientAddress)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetLink 查询链接状态
// @Summary 查询链接状态
// @Tags Link
// @Produce json
// @Param id path string true "Link ID"
// @Success 200 {object} response.Response
// @Router /api/v1/links/{id} [get]
func (h *LinkHandler) GetLink(c *gin.Context) {
	link, err := h.links.GetLink(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	// 领取前附带费用预估 (展示用)
	resp := gin.H{"link": link}
	if !link.Claimed {
		if fee, net, err := h.links.PreviewFee(c.Request.Context(), link.ID); err == nil {
			resp["estimated_fee"] = fee
			resp["estimated_net_amount"] = net
		}
	}
	response.Success(c, resp)
}

// ListLinks 分页查询链接
// @Summary 链接列表
// @Tags Link
// @Produce json
// @Param limit query int false "每页条数"
// @Param offset query int false "偏移"
// @Success 200 {object} response.Response
// @Router /api/v1/links [get]
func (h *LinkHandler) ListLinks(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	links, err := h.links.ListLinks(c.Request.Context(), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"links": links})
}

// ListLedger 查询链接资金流水
// @Summary 链接流水
// @Tags Link
// @Produce json
// @Param id path string true "Link ID"
// @Success 200 {object} response.Response
// @Router /api/v1/links/{id}/ledger [get]
func (h *LinkHandler) ListLedger(c *gin.Context) {
	entries, err := h.links.ListLedgerEntries(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"entries": entries})
}

// ListReconciliation 待人工对账链接列表 (运维用)
// @Summary 待对账链接
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Response
// @Router /api/v1/admin/reconciliation [get]
func (h *LinkHandler) ListReconciliation(c *gin.Context) {
	links, err := h.links.ListReconciliation(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"links": links})
}
