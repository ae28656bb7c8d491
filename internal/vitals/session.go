package vitals

// Пороги сессионного окна CLS в миллисекундах.
const (
	sessionGapMs     = 1000
	sessionMaxSpanMs = 5000
)

// sessionWindow накапливает сдвиги макета, относящиеся к одной сессии.
type sessionWindow struct {
	first float64
	last  float64
	value float64
	size  int
}

// add учитывает наблюдение и возвращает накопленное значение текущего окна.
//
// Наблюдение продлевает окно, если оно отстоит от предыдущего меньше чем на 1000 мс
// и от первого меньше чем на 5000 мс. Иначе окно начинается заново.
func (w *sessionWindow) add(startTime, magnitude float64) float64 {
	if w.size > 0 && startTime-w.last < sessionGapMs && startTime-w.first < sessionMaxSpanMs {
		w.value += magnitude
		w.last = startTime
		w.size++
		return w.value
	}
	w.first = startTime
	w.last = startTime
	w.value = magnitude
	w.size = 1
	return w.value
}
