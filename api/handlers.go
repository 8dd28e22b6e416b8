package api

import (
	"fmt"
	"math"
	"math/big"
	"net/http"
	"strconv"
	"time"

	"launchpad-token-factory/core/model"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Amount is wei as a decimal string plus a human readable ether value.
type Amount struct {
	Wei   string `json:"wei"`
	Ether string `json:"ether"`
}

func amountOf(wei *big.Int) Amount {
	if wei == nil {
		wei = new(big.Int)
	}
	return Amount{Wei: wei.String(), Ether: model.FormatEther(wei)}
}

type tokenParamsRequest struct {
	Name        string   `json:"name"`
	Symbol      string   `json:"symbol"`
	TotalSupply string   `json:"totalSupply"`
	Whitelist   []string `json:"whitelist"`
	BuyTax      int64    `json:"buyTax"`
	SellTax     int64    `json:"sellTax"`
	WalletTax   int64    `json:"walletTax"`
	LogoURL     string   `json:"logoUrl"`
	Website     string   `json:"website"`
	Telegram    string   `json:"telegram"`
	SalesLocked bool     `json:"salesLocked"`
	Mintable    bool     `json:"mintable"`
	MaxSupply   string   `json:"maxSupply"`
}

type createTokenRequest struct {
	Params       tokenParamsRequest `json:"params"`
	ReferralCode string             `json:"referralCode"`
	Payment      string             `json:"payment"`
}

type tokenResponse struct {
	Address     string   `json:"address"`
	Creator     string   `json:"creator"`
	Name        string   `json:"name"`
	Symbol      string   `json:"symbol"`
	TotalSupply string   `json:"totalSupply"`
	MaxSupply   string   `json:"maxSupply"`
	Whitelist   []string `json:"whitelist"`
	BuyTax      uint8    `json:"buyTax"`
	SellTax     uint8    `json:"sellTax"`
	WalletTax   uint8    `json:"walletTax"`
	LogoURL     string   `json:"logoUrl"`
	Website     string   `json:"website"`
	Telegram    string   `json:"telegram"`
	SalesLocked bool     `json:"salesLocked"`
	Mintable    bool     `json:"mintable"`
	Referrer    string   `json:"referrer,omitempty"`
	FeePaid     Amount   `json:"feePaid"`
	CreatedAt   string   `json:"createdAt"`
}

type referralTransactionResponse struct {
	Timestamp    string `json:"timestamp"`
	ReferredUser string `json:"referredUser"`
	TokenCreated string `json:"tokenCreated"`
	Amount       Amount `json:"amount"`
}

type setFeeRequest struct {
	Fee string `json:"fee"`
}

type setReferralPercentRequest struct {
	Percent *int64 `json:"percent"`
}

// percentOf narrows a JSON integer to the uint8 the core takes. Values past 255 saturate
// so the core bounds check still names the violation.
func percentOf(v int64) (uint8, error) {
	if v < 0 {
		return 0, fmt.Errorf("percent %d: %w", v, model.ErrInvalidAmount)
	}
	if v > math.MaxUint8 {
		return math.MaxUint8, nil
	}
	return uint8(v), nil
}

func parseSupply(field, value string) (*big.Int, error) {
	if value == "" {
		return nil, nil
	}
	supply, err := model.ParseWei(value)
	if err != nil {
		return nil, err
	}
	if supply.Sign() < 0 {
		return nil, fmt.Errorf("%s %s: %w", field, value, model.ErrInvalidAmount)
	}
	return supply, nil
}

func (r tokenParamsRequest) toParams() (model.TokenCreationParams, error) {
	params := model.TokenCreationParams{
		Name:        r.Name,
		Symbol:      r.Symbol,
		LogoURL:     r.LogoURL,
		Website:     r.Website,
		Telegram:    r.Telegram,
		SalesLocked: r.SalesLocked,
		Mintable:    r.Mintable,
	}
	var err error
	if params.BuyTax, err = percentOf(r.BuyTax); err != nil {
		return params, err
	}
	if params.SellTax, err = percentOf(r.SellTax); err != nil {
		return params, err
	}
	if params.WalletTax, err = percentOf(r.WalletTax); err != nil {
		return params, err
	}
	if params.TotalSupply, err = parseSupply("totalSupply", r.TotalSupply); err != nil {
		return params, err
	}
	if params.MaxSupply, err = parseSupply("maxSupply", r.MaxSupply); err != nil {
		return params, err
	}
	for _, entry := range r.Whitelist {
		if !common.IsHexAddress(entry) {
			return params, fmt.Errorf("whitelist entry %q is not an address", entry)
		}
		params.Whitelist = append(params.Whitelist, common.HexToAddress(entry))
	}
	return params, nil
}

func addressParam(c *gin.Context) (common.Address, bool) {
	value := c.Param("address")
	if !common.IsHexAddress(value) {
		abortWithError(c, model.ErrInvalidAddress)
		return common.Address{}, false
	}
	return common.HexToAddress(value), true
}

func hexList(addrs []common.Address) []string {
	out := make([]string, len(addrs))
	for i, addr := range addrs {
		out[i] = addr.Hex()
	}
	return out
}

func (s *Server) createToken(c *gin.Context) {
	var req createTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	params, err := req.Params.toParams()
	if err != nil {
		rejectRequest(c, err)
		return
	}
	// an unreadable code only means nobody is credited
	code, err := model.ParseReferralCode(req.ReferralCode)
	if err != nil {
		logrus.WithField("request_id", c.GetString(requestIDKey)).Debugf("ignoring referral code %q: %v", req.ReferralCode, err)
		code = nil
	}
	payment, err := model.ParseWei(req.Payment)
	if err != nil || payment.Sign() < 0 {
		abortWithError(c, model.ErrInvalidAmount)
		return
	}

	token, err := s.factory.CreateToken(c.Request.Context(), callerOf(c), params, code, payment)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"address": token.Hex()})
}

func (s *Server) getToken(c *gin.Context) {
	addr, ok := addressParam(c)
	if !ok {
		return
	}
	asset, found := s.factory.GetToken(addr)
	if !found {
		c.AbortWithStatusJSON(http.StatusNotFound, errorResponse{Error: "NotFound", Message: "token not found"})
		return
	}
	resp := tokenResponse{
		Address:     asset.Address.Hex(),
		Creator:     asset.Creator.Hex(),
		Name:        asset.Params.Name,
		Symbol:      asset.Params.Symbol,
		TotalSupply: asset.Params.TotalSupply.String(),
		MaxSupply:   asset.Params.MaxSupply.String(),
		Whitelist:   hexList(asset.Params.Whitelist),
		BuyTax:      asset.Params.BuyTax,
		SellTax:     asset.Params.SellTax,
		WalletTax:   asset.Params.WalletTax,
		LogoURL:     asset.Params.LogoURL,
		Website:     asset.Params.Website,
		Telegram:    asset.Params.Telegram,
		SalesLocked: asset.Params.SalesLocked,
		Mintable:    asset.Params.Mintable,
		FeePaid:     amountOf(asset.FeePaid),
		CreatedAt:   asset.CreatedAt.UTC().Format(time.RFC3339),
	}
	if asset.Referrer != nil {
		resp.Referrer = asset.Referrer.Hex()
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) generateReferralCode(c *gin.Context) {
	code, err := s.factory.GenerateReferralCode(callerOf(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"code": code.Hex()})
}

func (s *Server) updateReferralCode(c *gin.Context) {
	code, err := s.factory.UpdateReferralCode(callerOf(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": code.Hex()})
}

func (s *Server) withdrawReferralEarnings(c *gin.Context) {
	amount, err := s.factory.WithdrawReferralEarnings(c.Request.Context(), callerOf(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"amount": amountOf(amount)})
}

func (s *Server) setFee(c *gin.Context) {
	var req setFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	fee, err := model.ParseWei(req.Fee)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if err := s.factory.SetFee(callerOf(c), fee); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fee": amountOf(fee)})
}

func (s *Server) setReferralPercent(c *gin.Context) {
	var req setReferralPercentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if req.Percent == nil {
		badRequest(c, "percent is required")
		return
	}
	percent, err := percentOf(*req.Percent)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if err := s.factory.SetReferralPercent(callerOf(c), percent); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"percent": percent})
}

func (s *Server) getFee(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"fee": amountOf(s.factory.Fee())})
}

func (s *Server) getMinWithdrawal(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"minWithdrawal": amountOf(s.factory.MinWithdrawal())})
}

func (s *Server) getReferralPercent(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"percent": s.factory.ReferralPercent()})
}

func (s *Server) getOwner(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"owner": s.factory.Owner().Hex()})
}

func (s *Server) getTreasury(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"treasury": s.factory.TreasuryAddress().Hex()})
}

func (s *Server) getReferralCode(c *gin.Context) {
	code, err := model.ParseReferralCode(c.Param("code"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	if code == nil {
		c.JSON(http.StatusOK, gin.H{"active": false, "owner": common.Address{}.Hex()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"active": s.factory.IsReferralCodeActive(*code),
		"owner":  s.factory.GetReferralCodeOwner(*code).Hex(),
	})
}

func (s *Server) getUserReferralCode(c *gin.Context) {
	user, ok := addressParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": s.factory.GetUserReferralCode(user).Hex()})
}

func (s *Server) getReferralInfo(c *gin.Context) {
	user, ok := addressParam(c)
	if !ok {
		return
	}
	info := s.factory.GetReferralInfo(user)
	c.JSON(http.StatusOK, gin.H{
		"referralsCount":  info.ReferralsCount,
		"referredUsers":   hexList(info.ReferredUsers),
		"pendingEarnings": amountOf(info.PendingEarnings),
	})
}

func (s *Server) getReferralDetails(c *gin.Context) {
	user, ok := addressParam(c)
	if !ok {
		return
	}
	details := s.factory.GetReferralDetails(user)
	c.JSON(http.StatusOK, gin.H{
		"totalEarnings":     amountOf(details.TotalEarnings),
		"pendingEarnings":   amountOf(details.PendingEarnings),
		"withdrawnEarnings": amountOf(details.WithdrawnEarnings),
		"referralsCount":    details.ReferralsCount,
	})
}

func (s *Server) getReferralTransactions(c *gin.Context) {
	user, ok := addressParam(c)
	if !ok {
		return
	}
	txs := s.factory.GetReferralTransactions(user)
	out := make([]referralTransactionResponse, len(txs))
	for i, tx := range txs {
		out[i] = referralTransactionResponse{
			Timestamp:    tx.Timestamp.UTC().Format(time.RFC3339),
			ReferredUser: tx.ReferredUser.Hex(),
			TokenCreated: tx.TokenCreated.Hex(),
			Amount:       amountOf(tx.Amount),
		}
	}
	c.JSON(http.StatusOK, gin.H{"transactions": out})
}

func (s *Server) getCreatorTokens(c *gin.Context) {
	creator, ok := addressParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"tokens": hexList(s.factory.GetCreatorTokens(creator))})
}

func (s *Server) getBalance(c *gin.Context) {
	addr, ok := addressParam(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"balance": amountOf(s.factory.Balance(addr))})
}

func parseFrom(c *gin.Context) (uint, bool) {
	value := c.Query("from")
	if value == "" {
		return 0, false
	}
	from, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(from), true
}
