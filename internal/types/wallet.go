package types

import "github.com/go-openapi/swag"

// PostCreateWalletPayload requests wallet derivation for an end user.
type PostCreateWalletPayload struct {
	UserID *string `json:"userId"`
}

// WalletResponse is the public view of a wallet.
type WalletResponse struct {
	Address     string `json:"address"`
	OwnerUserID string `json:"userId"`
	ChainID     int64  `json:"chainId"`
	Deployed    bool   `json:"deployed"`
	CreatedAt   string `json:"createdAt"`
}

// WalletListResponse wraps a wallet collection.
type WalletListResponse struct {
	Wallets []*WalletResponse `json:"wallets"`
	Count   int               `json:"count"`
}

// UserIDValue unwraps the payload's user id.
func (p *PostCreateWalletPayload) UserIDValue() string {
	return swag.StringValue(p.UserID)
}
