package model

type ErrorCode int8

const (
	ErrUnknown ErrorCode = 0

	// creation parameters
	ErrNameTooLong             ErrorCode = -1
	ErrSymbolTooLong           ErrorCode = -2
	ErrTaxTooHigh              ErrorCode = -3
	ErrInvalidWhitelistAddress ErrorCode = -4
	ErrSupplyExceedsMax        ErrorCode = -5

	// payment
	ErrInsufficientPayment ErrorCode = -11
	ErrInsufficientFunds   ErrorCode = -12
	ErrInvalidAmount       ErrorCode = -13

	// referral registry
	ErrCodeAlreadyExists ErrorCode = -21
	ErrNoExistingCode    ErrorCode = -22
	ErrInvalidAddress    ErrorCode = -23

	// economic parameters
	ErrReferralPercentTooHigh     ErrorCode = -31
	ErrOwnableUnauthorizedAccount ErrorCode = -32

	// ledger
	ErrAmountTooSmall ErrorCode = -41
)

var errorNames = map[ErrorCode]string{
	ErrUnknown:                    "Unknown",
	ErrNameTooLong:                "NameTooLong",
	ErrSymbolTooLong:              "SymbolTooLong",
	ErrTaxTooHigh:                 "TaxTooHigh",
	ErrInvalidWhitelistAddress:    "InvalidWhitelistAddress",
	ErrSupplyExceedsMax:           "SupplyExceedsMax",
	ErrInsufficientPayment:        "InsufficientPayment",
	ErrInsufficientFunds:          "InsufficientFunds",
	ErrInvalidAmount:              "InvalidAmount",
	ErrCodeAlreadyExists:          "CodeAlreadyExists",
	ErrNoExistingCode:             "NoExistingCode",
	ErrInvalidAddress:             "InvalidAddress",
	ErrReferralPercentTooHigh:     "ReferralPercentTooHigh",
	ErrOwnableUnauthorizedAccount: "OwnableUnauthorizedAccount",
	ErrAmountTooSmall:             "AmountTooSmall",
}

var errorMessages = map[ErrorCode]string{
	ErrUnknown:                    "Unknown error",
	ErrNameTooLong:                "Token name is too long",
	ErrSymbolTooLong:              "Token symbol is too long",
	ErrTaxTooHigh:                 "Tax is too high",
	ErrInvalidWhitelistAddress:    "Whitelist contains the zero address",
	ErrSupplyExceedsMax:           "Total supply exceeds max supply",
	ErrInsufficientPayment:        "Payment is below the creation fee",
	ErrInsufficientFunds:          "Balance is too low",
	ErrInvalidAmount:              "Amount is invalid",
	ErrCodeAlreadyExists:          "Referral code already exists",
	ErrNoExistingCode:             "No referral code to update",
	ErrInvalidAddress:             "Address is invalid",
	ErrReferralPercentTooHigh:     "Referral percent is too high",
	ErrOwnableUnauthorizedAccount: "Caller is not the owner",
	ErrAmountTooSmall:             "Pending earnings are below the withdrawal minimum",
}

// Name returns the condition name callers match on, e.g. "TaxTooHigh".
func (code ErrorCode) Name() string {
	name, ok := errorNames[code]
	if !ok {
		return "Unrecognized"
	}
	return name
}

func (code ErrorCode) String() string {
	msg, ok := errorMessages[code]
	if !ok {
		return "Unrecognized error code"
	}
	return msg
}

func (code ErrorCode) Error() string {
	return code.Name() + ": " + code.String()
}
