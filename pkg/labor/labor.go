// Package labor содержит арифметику учёта рабочего времени техников:
// округление отметок времени до четверти часа и расчёт оплачиваемых часов.
package labor

import (
	"math"
	"time"
)

const (
	// QuarterMinutes - шаг округления отметок времени и перерывов.
	QuarterMinutes = 15

	// OvertimeMultiplier применяется к ставке при сверхурочной работе.
	OvertimeMultiplier = 1.5
)

// RoundToQuarter округляет время до ближайшей отметки 00/15/30/45 по минутам
// настенных часов в зоне t. Секунды и доли секунды отбрасываются.
// Минуты 53..59 переносятся на следующий час.
//
// Начало часа отсчитывается от самого момента t, а не собирается через
// time.Date: в час перевода часов назад местное время неоднозначно.
func RoundToQuarter(t time.Time) time.Time {
	quarters := math.Round(float64(t.Minute()) / QuarterMinutes)
	hourStart := t.Add(-(time.Duration(t.Minute())*time.Minute +
		time.Duration(t.Second())*time.Second +
		time.Duration(t.Nanosecond())))
	return hourStart.Add(time.Duration(quarters*QuarterMinutes) * time.Minute)
}

// RoundHours округляет часы до ближайшей четверти (0.25).
func RoundHours(hours float64) float64 {
	return math.Round(hours*4) / 4
}

// BillableHours считает оплачиваемые часы: длительность минус перерыв,
// не меньше нуля, с округлением до четверти часа.
func BillableHours(start, end time.Time, breakMinutes int) float64 {
	rawHours := end.Sub(start).Hours()
	breakHours := float64(breakMinutes) / 60
	return RoundHours(math.Max(0, rawHours-breakHours))
}

// EffectiveRate возвращает ставку с учётом сверхурочного множителя.
func EffectiveRate(hourlyRate float64, isOvertime bool) float64 {
	if isOvertime {
		return hourlyRate * OvertimeMultiplier
	}
	return hourlyRate
}

// Cost - стоимость работы за totalHours.
func Cost(totalHours, hourlyRate float64, isOvertime bool) float64 {
	return totalHours * EffectiveRate(hourlyRate, isOvertime)
}

// IsValidBreak проверяет, что перерыв неотрицателен и кратен 15 минутам.
func IsValidBreak(breakMinutes int) bool {
	return breakMinutes >= 0 && breakMinutes%QuarterMinutes == 0
}

// Totals - итог закрытия сессии.
type Totals struct {
	End        time.Time
	TotalHours float64
	TotalCost  float64
}

// Close вычисляет итоги сессии, начатой в start, при остановке в now.
// Конец сессии округляется и никогда не бывает раньше начала.
func Close(start, now time.Time, breakMinutes int, hourlyRate float64, isOvertime bool) Totals {
	end := RoundToQuarter(now)
	if end.Before(start) {
		end = start
	}
	hours := BillableHours(start, end, breakMinutes)
	return Totals{
		End:        end,
		TotalHours: hours,
		TotalCost:  Cost(hours, hourlyRate, isOvertime),
	}
}
