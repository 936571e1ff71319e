package request

// CreateLinkRequest 创建支付链接
// 金额为最小单位 (lamports) 整数, 创建时只是期望值, 入金确认后以链上为准
type CreateLinkRequest struct {
	GrossAmount int64  `json:"gross_amount" binding:"required,gt=0"`
	AssetType   string `json:"asset_type" binding:"omitempty,oneof=SOL"`
}

// RecordDepositRequest 记录外部已确认的入金凭证
type RecordDepositRequest struct {
	DepositRef  string `json:"deposit_ref" binding:"required"`
	GrossAmount int64  `json:"gross_amount" binding:"required,gt=0"`
}

// ClaimLinkRequest 领取链接
type ClaimLinkRequest struct {
	RecipientAddress string `json:"recipient_address" binding:"required"`
}
