// Package visual сравнивает снимки элементов и страниц с эталонами с допусками,
// которые собираются из слоев конфигурации.
package visual

import "time"

const (
	AnimationsDisabled = "disabled"
	AnimationsAllow    = "allow"

	ModeRGB = "rgb"
	ModeYIQ = "yiq"
)

// Options содержит итоговые параметры одной визуальной проверки.
type Options struct {
	Threshold             float64       `json:"threshold"`
	MaxDiffPixels         int           `json:"maxDiffPixels"`
	MaxDiffPixelRatio     float64       `json:"maxDiffPixelRatio"`
	Animations            string        `json:"animations"`
	Mode                  string        `json:"mode"`
	MaxRetries            int           `json:"maxRetries"`
	StabilityChecks       bool          `json:"stabilityChecks"`
	ResolutionIndependent bool          `json:"resolutionIndependent"`
	FocusOnContent        bool          `json:"focusOnContent"`
	ScaleToFit            bool          `json:"scaleToFit"`
	StabilityTimeout      time.Duration `json:"stabilityTimeout"`
	WaitBetweenAttempts   time.Duration `json:"waitBetweenAttempts"`
	FullPage              bool          `json:"fullPage"`
	// AcceptOnExhaustion засчитывает проверку как пройденную, когда все
	// стратегии исчерпаны. Это приблизительное визуальное соответствие,
	// а не точное совпадение.
	AcceptOnExhaustion bool `json:"acceptOnExhaustion"`
}

// MultiStrategy сообщает, включен ли путь с эскалацией стратегий.
func (o Options) MultiStrategy() bool {
	return o.ResolutionIndependent || o.FocusOnContent || o.ScaleToFit
}

// BaseOptions возвращает значения до применения любых слоев.
func BaseOptions() Options {
	return Options{
		Threshold:           0.1,
		MaxDiffPixels:       1000,
		MaxDiffPixelRatio:   0.02,
		Animations:          AnimationsDisabled,
		Mode:                ModeRGB,
		MaxRetries:          3,
		StabilityChecks:     true,
		StabilityTimeout:    2 * time.Second,
		WaitBetweenAttempts: 2 * time.Second,
		FullPage:            true,
	}
}

// Overrides описывает слой конфигурации. Слой задает только те поля, что в нем названы.
type Overrides struct {
	Threshold             *float64       `yaml:"threshold,omitempty"`
	MaxDiffPixels         *int           `yaml:"maxDiffPixels,omitempty"`
	MaxDiffPixelRatio     *float64       `yaml:"maxDiffPixelRatio,omitempty"`
	Animations            *string        `yaml:"animations,omitempty"`
	Mode                  *string        `yaml:"mode,omitempty"`
	MaxRetries            *int           `yaml:"maxRetries,omitempty"`
	StabilityChecks       *bool          `yaml:"stabilityChecks,omitempty"`
	ResolutionIndependent *bool          `yaml:"resolutionIndependent,omitempty"`
	FocusOnContent        *bool          `yaml:"focusOnContent,omitempty"`
	ScaleToFit            *bool          `yaml:"scaleToFit,omitempty"`
	StabilityTimeout      *time.Duration `yaml:"stabilityTimeout,omitempty"`
	WaitBetweenAttempts   *time.Duration `yaml:"waitBetweenAttempts,omitempty"`
	FullPage              *bool          `yaml:"fullPage,omitempty"`
	AcceptOnExhaustion    *bool          `yaml:"acceptOnExhaustion,omitempty"`
}

// Apply накладывает слой на o ключ за ключом.
func (l Overrides) Apply(o Options) Options {
	set(&o.Threshold, l.Threshold)
	set(&o.MaxDiffPixels, l.MaxDiffPixels)
	set(&o.MaxDiffPixelRatio, l.MaxDiffPixelRatio)
	set(&o.Animations, l.Animations)
	set(&o.Mode, l.Mode)
	set(&o.MaxRetries, l.MaxRetries)
	set(&o.StabilityChecks, l.StabilityChecks)
	set(&o.ResolutionIndependent, l.ResolutionIndependent)
	set(&o.FocusOnContent, l.FocusOnContent)
	set(&o.ScaleToFit, l.ScaleToFit)
	set(&o.StabilityTimeout, l.StabilityTimeout)
	set(&o.WaitBetweenAttempts, l.WaitBetweenAttempts)
	set(&o.FullPage, l.FullPage)
	set(&o.AcceptOnExhaustion, l.AcceptOnExhaustion)
	return o
}

// Merge возвращает слой, где поля top перекрывают поля l.
func (l Overrides) Merge(top Overrides) Overrides {
	pick(&l.Threshold, top.Threshold)
	pick(&l.MaxDiffPixels, top.MaxDiffPixels)
	pick(&l.MaxDiffPixelRatio, top.MaxDiffPixelRatio)
	pick(&l.Animations, top.Animations)
	pick(&l.Mode, top.Mode)
	pick(&l.MaxRetries, top.MaxRetries)
	pick(&l.StabilityChecks, top.StabilityChecks)
	pick(&l.ResolutionIndependent, top.ResolutionIndependent)
	pick(&l.FocusOnContent, top.FocusOnContent)
	pick(&l.ScaleToFit, top.ScaleToFit)
	pick(&l.StabilityTimeout, top.StabilityTimeout)
	pick(&l.WaitBetweenAttempts, top.WaitBetweenAttempts)
	pick(&l.FullPage, top.FullPage)
	pick(&l.AcceptOnExhaustion, top.AcceptOnExhaustion)
	return l
}

func pick[T any](dst **T, src *T) {
	if src != nil {
		*dst = src
	}
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// Float возвращает указатель на v. Остальные конструкторы ниже устроены так же.
func Float(v float64) *float64 { return &v }

func Int(v int) *int { return &v }

func Bool(v bool) *bool { return &v }

func String(v string) *string { return &v }

func Duration(v time.Duration) *time.Duration { return &v }
