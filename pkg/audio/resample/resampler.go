// ABOUTME: Streaming linear resampler for float32 audio
// ABOUTME: Carries interpolation state across chunks of a continuous stream
package resample

// Resampler performs linear interpolation to convert between sample rates
type Resampler struct {
	inputRate  int
	outputRate int
	channels   int
	ratio      float64 // input frames consumed per output frame
	position   float64 // relative to lastFrame when hasLast, else to input[0]
	lastFrame  []float32
	hasLast    bool
}

// New creates a new resampler for interleaved audio with channels channels
func New(inputRate, outputRate, channels int) *Resampler {
	if channels < 1 {
		channels = 1
	}
	return &Resampler{
		inputRate:  inputRate,
		outputRate: outputRate,
		channels:   channels,
		ratio:      float64(inputRate) / float64(outputRate),
		lastFrame:  make([]float32, channels),
	}
}

// Passthrough reports whether the rates match and Resample only copies
func (r *Resampler) Passthrough() bool {
	return r.inputRate == r.outputRate
}

// Resample converts the next chunk of interleaved input and appends the result to dst.
// A trailing partial frame in input is ignored.
func (r *Resampler) Resample(dst, input []float32) []float32 {
	if r.Passthrough() {
		return append(dst, input...)
	}

	inputFrames := len(input) / r.channels
	if inputFrames == 0 {
		return dst
	}

	offset := 0
	if r.hasLast {
		offset = 1
	}
	total := inputFrames + offset

	frame := func(i int) []float32 {
		if i < offset {
			return r.lastFrame
		}
		i -= offset
		return input[i*r.channels : (i+1)*r.channels]
	}

	for {
		idx := int(r.position)
		if idx >= total-1 {
			break
		}

		frac := float32(r.position - float64(idx))
		a, b := frame(idx), frame(idx+1)
		for ch := 0; ch < r.channels; ch++ {
			dst = append(dst, a[ch]*(1-frac)+b[ch]*frac)
		}
		r.position += r.ratio
	}

	// The last input frame becomes virtual frame 0 of the next chunk
	r.position -= float64(total - 1)
	copy(r.lastFrame, input[(inputFrames-1)*r.channels:inputFrames*r.channels])
	r.hasLast = true

	return dst
}

// Reset clears the carried state, e.g. when a new stream starts
func (r *Resampler) Reset() {
	r.position = 0
	r.hasLast = false
	clear(r.lastFrame)
}
