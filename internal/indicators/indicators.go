package indicators

import (
	"fmt"
	"math"

	"github.com/Alias1177/Oracle/models"
)

// MinCandles is the smallest candle history Snapshot accepts: enough for the
// 28-period RSI plus ADX smoothing.
const MinCandles = 30

// Snapshot computes the full per-tick indicator mapping the classifier family
// reads. Every key a registered classifier may require is present, so a
// complete snapshot never trips MissingIndicator downstream.
func Snapshot(candles []models.Candle) (map[string]float64, error) {
	if len(candles) < MinCandles {
		return nil, fmt.Errorf("need at least %d candles, got %d", MinCandles, len(candles))
	}

	adx, plusDI, minusDI := ADX(candles, 14)
	stochK, stochD := Stochastic(candles, 14, 3)

	atr5 := ATR(candles, 5)
	atr20 := ATR(candles, 20)
	atrRatio := 1.0
	if atr20 > 0 {
		atrRatio = atr5 / atr20
	}

	upper, middle, lower := BollingerBands(candles, 20, 2.0)
	bbWidth := 0.0
	if middle > 0 {
		bbWidth = (upper - lower) / middle
	}

	return map[string]float64{
		"rsi":        RSI(candles, 14),
		"rsi_7":      RSI(candles, 7),
		"rsi_14":     RSI(candles, 14),
		"rsi_28":     RSI(candles, 28),
		"roc":        RateOfChange(candles, 10),
		"momentum":   RateOfChange(candles, 5),
		"atr_ratio":  atrRatio,
		"bb_width":   bbWidth,
		"adx":        adx,
		"plus_di":    plusDI,
		"minus_di":   minusDI,
		"stoch_k":    stochK,
		"stoch_d":    stochD,
		"williams_r": WilliamsR(candles, 14),
		"cmf":        ChaikinMoneyFlow(candles, 20),
	}, nil
}

// RSI calculates the Relative Strength Index with Wilder smoothing.
func RSI(candles []models.Candle, period int) float64 {
	if len(candles) < period+1 {
		return 50.0
	}

	var gains, losses float64
	for i := 1; i <= period; i++ {
		change := candles[i].Close - candles[i-1].Close
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}
	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	for i := period + 1; i < len(candles); i++ {
		change := candles[i].Close - candles[i-1].Close
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - (100.0 / (1.0 + rs))
}

// RateOfChange is the fractional close-to-close change over period bars.
func RateOfChange(candles []models.Candle, period int) float64 {
	if len(candles) < period+1 {
		return 0
	}
	prev := candles[len(candles)-1-period].Close
	if prev == 0 {
		return 0
	}
	return (candles[len(candles)-1].Close - prev) / prev
}

// ATR calculates the Average True Range.
func ATR(candles []models.Candle, period int) float64 {
	if len(candles) < 2 {
		return 0
	}

	var trueRanges []float64
	for i := 1; i < len(candles); i++ {
		highLow := candles[i].High - candles[i].Low
		highPrevClose := math.Abs(candles[i].High - candles[i-1].Close)
		lowPrevClose := math.Abs(candles[i].Low - candles[i-1].Close)
		trueRanges = append(trueRanges, math.Max(highLow, math.Max(highPrevClose, lowPrevClose)))
	}

	if len(trueRanges) < period {
		period = len(trueRanges)
	}
	var sum float64
	for i := len(trueRanges) - period; i < len(trueRanges); i++ {
		sum += trueRanges[i]
	}
	return sum / float64(period)
}

// BollingerBands returns the upper, middle and lower bands.
func BollingerBands(candles []models.Candle, period int, stdDev float64) (float64, float64, float64) {
	if len(candles) < period {
		last := candles[len(candles)-1].Close
		return last, last, last
	}

	var sum float64
	for i := len(candles) - period; i < len(candles); i++ {
		sum += candles[i].Close
	}
	middle := sum / float64(period)

	var variance float64
	for i := len(candles) - period; i < len(candles); i++ {
		variance += math.Pow(candles[i].Close-middle, 2)
	}
	sd := math.Sqrt(variance / float64(period))

	return middle + sd*stdDev, middle, middle - sd*stdDev
}

// ADX returns the Average Directional Index with its +DI and -DI components,
// using Wilder's directional movement definitions.
func ADX(candles []models.Candle, period int) (float64, float64, float64) {
	if len(candles) < period*2 {
		return 0, 0, 0
	}

	var plusDM, minusDM, trueRange []float64
	for i := 1; i < len(candles); i++ {
		upMove := candles[i].High - candles[i-1].High
		downMove := candles[i-1].Low - candles[i].Low

		pDM, mDM := 0.0, 0.0
		if upMove > downMove && upMove > 0 {
			pDM = upMove
		}
		if downMove > upMove && downMove > 0 {
			mDM = downMove
		}
		plusDM = append(plusDM, pDM)
		minusDM = append(minusDM, mDM)

		tr1 := candles[i].High - candles[i].Low
		tr2 := math.Abs(candles[i].High - candles[i-1].Close)
		tr3 := math.Abs(candles[i].Low - candles[i-1].Close)
		trueRange = append(trueRange, math.Max(tr1, math.Max(tr2, tr3)))
	}

	// Wilder smoothing over the full series.
	var smoothedPlusDM, smoothedMinusDM, smoothedTR float64
	for i := 0; i < period; i++ {
		smoothedPlusDM += plusDM[i]
		smoothedMinusDM += minusDM[i]
		smoothedTR += trueRange[i]
	}

	var dxSum float64
	dxCount := 0
	for i := period; i < len(trueRange); i++ {
		smoothedPlusDM = smoothedPlusDM - smoothedPlusDM/float64(period) + plusDM[i]
		smoothedMinusDM = smoothedMinusDM - smoothedMinusDM/float64(period) + minusDM[i]
		smoothedTR = smoothedTR - smoothedTR/float64(period) + trueRange[i]

		if smoothedTR == 0 {
			continue
		}
		pDI := (smoothedPlusDM / smoothedTR) * 100
		mDI := (smoothedMinusDM / smoothedTR) * 100
		if pDI+mDI > 0 {
			dxSum += math.Abs(pDI-mDI) / (pDI + mDI) * 100
			dxCount++
		}
	}

	if smoothedTR == 0 || dxCount == 0 {
		return 0, 0, 0
	}
	plusDI := (smoothedPlusDM / smoothedTR) * 100
	minusDI := (smoothedMinusDM / smoothedTR) * 100
	return dxSum / float64(dxCount), plusDI, minusDI
}

// Stochastic calculates the %K and %D oscillator values.
func Stochastic(candles []models.Candle, kPeriod, dPeriod int) (float64, float64) {
	if len(candles) < kPeriod {
		return 50.0, 50.0
	}

	kAt := func(end int) float64 {
		highest, lowest := 0.0, 0.0
		for i := end - kPeriod + 1; i <= end; i++ {
			if i == end-kPeriod+1 || candles[i].High > highest {
				highest = candles[i].High
			}
			if i == end-kPeriod+1 || candles[i].Low < lowest {
				lowest = candles[i].Low
			}
		}
		if highest-lowest <= 0 {
			return 50.0
		}
		return (candles[end].Close - lowest) / (highest - lowest) * 100
	}

	k := kAt(len(candles) - 1)

	var kSum float64
	count := 0
	for i := 0; i < dPeriod; i++ {
		end := len(candles) - 1 - i
		if end-kPeriod+1 < 0 {
			break
		}
		kSum += kAt(end)
		count++
	}
	if count == 0 {
		return k, k
	}
	return k, kSum / float64(count)
}

// WilliamsR calculates Williams %R on [-100, 0].
func WilliamsR(candles []models.Candle, period int) float64 {
	if len(candles) < period {
		return -50.0
	}

	highest, lowest := 0.0, 0.0
	for i := len(candles) - period; i < len(candles); i++ {
		if i == len(candles)-period || candles[i].High > highest {
			highest = candles[i].High
		}
		if i == len(candles)-period || candles[i].Low < lowest {
			lowest = candles[i].Low
		}
	}
	if highest-lowest <= 0 {
		return -50.0
	}
	return (highest - candles[len(candles)-1].Close) / (highest - lowest) * -100
}

// ChaikinMoneyFlow measures accumulation/distribution pressure on [-1, 1].
func ChaikinMoneyFlow(candles []models.Candle, period int) float64 {
	if len(candles) < period {
		period = len(candles)
	}

	var mfVolume, volume float64
	for i := len(candles) - period; i < len(candles); i++ {
		c := candles[i]
		spread := c.High - c.Low
		if spread <= 0 || c.Volume <= 0 {
			continue
		}
		multiplier := ((c.Close - c.Low) - (c.High - c.Close)) / spread
		mfVolume += multiplier * c.Volume
		volume += c.Volume
	}
	if volume == 0 {
		return 0
	}
	return mfVolume / volume
}
