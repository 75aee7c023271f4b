package market

import "errors"

var (
	// ErrInvalidAmount rejects zero or otherwise out-of-domain trade sizes.
	ErrInvalidAmount = errors.New("market: invalid amount")

	// ErrInsufficientLiquidity means the market does not hold enough reserve
	// tokens to fill a buy.
	ErrInsufficientLiquidity = errors.New("market: insufficient token liquidity")

	// ErrInsufficientPayment means the payment sent is below the fee-inclusive
	// cost of the requested amount.
	ErrInsufficientPayment = errors.New("market: payment below cost")

	// ErrInsufficientSupply means a sell amount exceeds the current effective
	// supply tracked by the curve.
	ErrInsufficientSupply = errors.New("market: sell exceeds effective supply")

	// ErrInsufficientCurveLiquidity means the market lacks the native currency
	// to pay out a sell.
	ErrInsufficientCurveLiquidity = errors.New("market: insufficient native liquidity")

	// ErrTransferFailed wraps a failed inbound or outbound ledger transfer.
	ErrTransferFailed = errors.New("market: transfer failed")

	// ErrUnauthorized rejects privileged calls from the wrong identity.
	ErrUnauthorized = errors.New("market: unauthorized")

	// ErrNoFeesAvailable rejects a fee withdrawal when the market holds no
	// native balance.
	ErrNoFeesAvailable = errors.New("market: no fees available")
)
