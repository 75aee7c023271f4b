package market

import (
	"math/big"

	"github.com/mintcurve/launchpad/internal/bigmath"
)

// FeePrecision is the denominator for basis-point fee rates: 50 = 0.5%.
const FeePrecision = 10_000

// findRounds bounds the binary search in TokensForPayment. 256 rounds cover
// any interval a 256-bit upper bound can produce; the loop exits earlier once
// the bracket collapses.
const findRounds = 256

// CurveParams fixes the shape of the bonding curve at deploy time.
//
// The marginal price of the k-th normalized supply unit is
// basePrice + slope*k, measured in curve cost units. Summing over a discrete
// trade and rescaling by unitScale/scalingFactor yields the price in the
// ledger's native base unit.
type CurveParams struct {
	BasePrice     *big.Int
	Slope         *big.Int
	Normalizer    *big.Int
	ScalingFactor *big.Int
	// UnitScale converts cost units into the native base unit; 1e18 for the
	// usual 18-decimal native currency.
	UnitScale *big.Int
}

// DefaultUnitScale is the 10^18 scaling used by 18-decimal ledgers.
func DefaultUnitScale() *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
}

func (p CurveParams) validate() error {
	for _, v := range []*big.Int{p.BasePrice, p.Slope, p.Normalizer, p.ScalingFactor, p.UnitScale} {
		if v == nil || v.Sign() < 0 {
			return ErrInvalidAmount
		}
	}
	if p.Normalizer.Sign() == 0 || p.ScalingFactor.Sign() == 0 || p.BasePrice.Sign() == 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Price is the cost, in the native base unit, to move the pricing supply from
// supply to supply+amount:
//
//	normSupply = supply / normalizer
//	normAmount = amount / normalizer
//	costUnits  = normAmount*basePrice + slope*(normSupply*normAmount + normAmount*(normAmount-1)/2)
//	price      = costUnits * unitScale / scalingFactor
//
// which is the closed form of the sum over k=0..amount-1 of
// basePrice + slope*(supply+k), normalized to keep intermediate products small
// on large supplies. Pure; monotonically non-decreasing in both arguments and
// strictly increasing across whole normalizer units; Price(s, 0) == 0.
func (p CurveParams) Price(supply, amount *big.Int) *big.Int {
	normAmount := new(big.Int).Div(amount, p.Normalizer)
	// Below one normalizer unit the integral is empty; short-circuit before
	// the (normAmount-1) term can go negative.
	if normAmount.Sign() == 0 {
		return new(big.Int)
	}
	normSupply := new(big.Int).Div(supply, p.Normalizer)

	linear := new(big.Int).Mul(normAmount, p.BasePrice)

	cross := new(big.Int).Mul(normSupply, normAmount)
	tri := new(big.Int).Sub(normAmount, big.NewInt(1))
	tri.Mul(tri, normAmount)
	tri.Div(tri, big.NewInt(2))

	costUnits := new(big.Int).Add(cross, tri)
	costUnits.Mul(costUnits, p.Slope)
	costUnits.Add(costUnits, linear)

	costUnits.Mul(costUnits, p.UnitScale)
	return costUnits.Div(costUnits, p.ScalingFactor)
}

// BuyPrice quotes the raw cost of buying amount tokens at the current
// effective supply.
func (m *Market) BuyPrice(amount *big.Int) *big.Int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.curve.Price(m.effectiveSupply, amount)
}

// SellPrice quotes the raw proceeds of selling amount tokens back into the
// curve. Fails with ErrInsufficientSupply when amount exceeds the effective
// supply.
func (m *Market) SellPrice(amount *big.Int) (*big.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sellPriceLocked(amount)
}

func (m *Market) sellPriceLocked(amount *big.Int) (*big.Int, error) {
	base, err := bigmath.Sub(m.effectiveSupply, amount)
	if err != nil {
		return nil, ErrInsufficientSupply
	}
	return m.curve.Price(base, amount), nil
}

// BuyPriceWithFee is the raw buy price plus the buy fee, both floored.
func (m *Market) BuyPriceWithFee(amount *big.Int) *big.Int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.buyPriceWithFeeLocked(amount)
}

func (m *Market) buyPriceWithFeeLocked(amount *big.Int) *big.Int {
	raw := m.curve.Price(m.effectiveSupply, amount)
	return new(big.Int).Add(raw, feeOn(raw, m.buyFeeBps))
}

// SellPriceWithFee is the raw sell proceeds minus the sell fee.
func (m *Market) SellPriceWithFee(amount *big.Int) (*big.Int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, err := m.sellPriceLocked(amount)
	if err != nil {
		return nil, err
	}
	return new(big.Int).Sub(raw, feeOn(raw, m.sellFeeBps)), nil
}

// feeOn computes floor(price * rateBps / FeePrecision).
func feeOn(price *big.Int, rateBps uint64) *big.Int {
	fee := new(big.Int).Mul(price, new(big.Int).SetUint64(rateBps))
	return fee.Div(fee, big.NewInt(FeePrecision))
}

// TokensForPayment inverts BuyPriceWithFee: the largest amount whose
// fee-inclusive cost does not exceed payment. Deterministic and monotone in
// payment. Used by the router to size the buy leg of a swap.
func (m *Market) TokensForPayment(payment *big.Int) *big.Int {
	if payment == nil || payment.Sign() < 0 {
		return new(big.Int)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	low := new(big.Int)
	high := m.curve.paymentUpperBound(payment)

	// Bisect [low, high) keeping low feasible and high infeasible; low
	// converges to the floor answer.
	for i := 0; i < findRounds; i++ {
		if new(big.Int).Sub(high, low).Cmp(big.NewInt(1)) <= 0 {
			break
		}
		mid := new(big.Int).Add(low, high)
		mid.Rsh(mid, 1)
		if m.buyPriceWithFeeLocked(mid).Cmp(payment) <= 0 {
			low = mid
		} else {
			high = mid
		}
	}
	return low
}

// paymentUpperBound over-estimates the largest amount purchasable for
// payment. It drops the slope term entirely and inverts the basePrice term
// alone, so it can only over-shoot. The final rescale in Price floors, so a
// feasible normalized amount n only guarantees n*basePrice*unitScale <
// (payment+1)*scalingFactor; the bound therefore starts from payment+1 and
// rounds the division up:
//
//	amount < ceil((payment+1)*scalingFactor / (basePrice*unitScale)) * normalizer
//
// The search silently truncates valid output if this ever under-estimates the
// true root, so the bound is a correctness obligation, not a tuning knob
// (property-tested in curve_test.go).
func (p CurveParams) paymentUpperBound(payment *big.Int) *big.Int {
	num := new(big.Int).Add(payment, big.NewInt(1))
	num.Mul(num, p.ScalingFactor)
	den := new(big.Int).Mul(p.BasePrice, p.UnitScale)
	num.Add(num, new(big.Int).Sub(den, big.NewInt(1)))
	num.Div(num, den)
	num.Mul(num, p.Normalizer)
	// One extra normalizer unit keeps high strictly infeasible for the
	// bisection above.
	return num.Add(num, p.Normalizer)
}
