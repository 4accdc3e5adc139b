// SPDX-License-Identifier: EPL-2.0

package wav_test

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ik5/modpbx/formats/wav"
)

func ExampleWriteWAV16Channels() {
	stereo := []int16{1000, -1000, 2000, -2000}

	buf := new(bytes.Buffer)
	if err := wav.WriteWAV16Channels(buf, 44100, 2, stereo); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(buf.Len(), "bytes")
	// Output: 52 bytes
}

func ExampleDecoder_Decode() {
	buf := new(bytes.Buffer)
	_ = wav.WriteWAV16(buf, 8000, []int16{0, 16384, -16384})

	src, err := wav.Decoder{}.Decode(buf)
	if err != nil {
		fmt.Println(err)
		return
	}

	samples := make([]float32, 8)
	n, err := src.ReadSamples(samples)
	fmt.Println(src.SampleRate(), src.Channels(), samples[:n], err == io.EOF)
	// Output: 8000 1 [0 0.5 -0.5] true
}

func ExampleDecoder_Decode_notWAV() {
	_, err := wav.Decoder{}.Decode(bytes.NewReader([]byte("definitely not a riff file")))
	fmt.Println(err)
	// Output: not a WAV file
}
