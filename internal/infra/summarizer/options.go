package summarizer

// Options is the full parameter set sent with a summarization call.
// Chat-style providers use the subset they understand; Hugging Face receives all of it.
type Options struct {
	MaxLength         int
	MinLength         int
	DoSample          bool
	NumBeams          int
	Temperature       float64
	TopK              int
	TopP              float64
	RepetitionPenalty float64
	LengthPenalty     float64
	NoRepeatNgramSize int
}

// Overrides carries caller-supplied option values.
// A nil field keeps whatever the base Options already holds.
type Overrides struct {
	MaxLength         *int     `json:"maxLength,omitempty"`
	MinLength         *int     `json:"minLength,omitempty"`
	DoSample          *bool    `json:"doSample,omitempty"`
	NumBeams          *int     `json:"numBeams,omitempty"`
	Temperature       *float64 `json:"temperature,omitempty"`
	TopK              *int     `json:"topK,omitempty"`
	TopP              *float64 `json:"topP,omitempty"`
	RepetitionPenalty *float64 `json:"repetitionPenalty,omitempty"`
	LengthPenalty     *float64 `json:"lengthPenalty,omitempty"`
	NoRepeatNgramSize *int     `json:"noRepeatNgramSize,omitempty"`
}

const (
	minChunkMaxLength = 60
	minChunkMinLength = 20
)

// DefaultOptions returns the detailed multi-paragraph summary defaults.
func DefaultOptions() Options {
	return Options{
		MaxLength:         400,
		MinLength:         100,
		DoSample:          true,
		NumBeams:          4,
		Temperature:       1.0,
		TopK:              50,
		TopP:              0.9,
		RepetitionPenalty: 1.2,
		LengthPenalty:     1.0,
		NoRepeatNgramSize: 3,
	}
}

// Merge returns a copy of o with every non-nil override applied.
func (o Options) Merge(ov *Overrides) Options {
	if ov == nil {
		return o
	}
	if ov.MaxLength != nil {
		o.MaxLength = *ov.MaxLength
	}
	if ov.MinLength != nil {
		o.MinLength = *ov.MinLength
	}
	if ov.DoSample != nil {
		o.DoSample = *ov.DoSample
	}
	if ov.NumBeams != nil {
		o.NumBeams = *ov.NumBeams
	}
	if ov.Temperature != nil {
		o.Temperature = *ov.Temperature
	}
	if ov.TopK != nil {
		o.TopK = *ov.TopK
	}
	if ov.TopP != nil {
		o.TopP = *ov.TopP
	}
	if ov.RepetitionPenalty != nil {
		o.RepetitionPenalty = *ov.RepetitionPenalty
	}
	if ov.LengthPenalty != nil {
		o.LengthPenalty = *ov.LengthPenalty
	}
	if ov.NoRepeatNgramSize != nil {
		o.NoRepeatNgramSize = *ov.NoRepeatNgramSize
	}
	return o
}

// ForChunk derives the options used for a single chunk of a long document.
// Lengths are halved so that the recombined text stays close to the final target.
func (o Options) ForChunk() Options {
	o.MaxLength = max(o.MaxLength/2, minChunkMaxLength)
	o.MinLength = max(o.MinLength/2, minChunkMinLength)
	if o.MinLength > o.MaxLength {
		o.MinLength = o.MaxLength
	}
	return o
}

// Validate reports the first option outside its accepted range.
func (o Options) Validate() error {
	switch {
	case o.MaxLength <= 0:
		return &OptionError{Field: "maxLength", Message: "must be positive"}
	case o.MinLength < 0:
		return &OptionError{Field: "minLength", Message: "must not be negative"}
	case o.MinLength > o.MaxLength:
		return &OptionError{Field: "minLength", Message: "must not exceed maxLength"}
	case o.NumBeams < 1:
		return &OptionError{Field: "numBeams", Message: "must be at least 1"}
	case o.Temperature < 0 || o.Temperature > 2:
		return &OptionError{Field: "temperature", Message: "must be between 0 and 2"}
	case o.TopK < 0:
		return &OptionError{Field: "topK", Message: "must not be negative"}
	case o.TopP < 0 || o.TopP > 1:
		return &OptionError{Field: "topP", Message: "must be between 0 and 1"}
	case o.RepetitionPenalty <= 0:
		return &OptionError{Field: "repetitionPenalty", Message: "must be positive"}
	case o.NoRepeatNgramSize < 0:
		return &OptionError{Field: "noRepeatNgramSize", Message: "must not be negative"}
	}
	return nil
}
