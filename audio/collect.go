// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/ik5/modpbx/utils"
)

// CollectPCM16 reads src to the end and returns its samples, still
// interleaved, as 16-bit PCM. bufferSize is the read size in samples and
// is rounded down to a whole number of frames.
//
// Example:
//
//	mono := audio.NewMonoMixer(audio.NewResampler(src, 8000))
//	pcm16, err := audio.CollectPCM16(mono, 4096)
func CollectPCM16(src Source, bufferSize int) ([]int16, error) {
	channels := max(1, src.Channels())
	bufferSize -= bufferSize % channels
	if bufferSize <= 0 {
		return nil, ErrInvalidDstSize
	}

	// start with about two seconds and grow by doubling
	pcm16 := make([]int16, 0, src.SampleRate()*channels*2)
	buf := make([]float32, bufferSize)

	for {
		n, err := src.ReadSamples(buf)
		if n > 0 {
			if cap(pcm16)-len(pcm16) < n {
				grown := make([]int16, len(pcm16), len(pcm16)+max(n, cap(pcm16)))
				copy(grown, pcm16)
				pcm16 = grown
			}

			start := len(pcm16)
			pcm16 = pcm16[:start+n]
			for i, x := range buf[:n] {
				pcm16[start+i] = utils.Float32ToInt16(x)
			}
		}

		if err == io.EOF {
			return pcm16, nil
		}
		if err != nil {
			return nil, fmt.Errorf("collect: %w", err)
		}
		if n == 0 {
			return pcm16, nil
		}
	}
}
