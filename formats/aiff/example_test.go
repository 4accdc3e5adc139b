// SPDX-License-Identifier: EPL-2.0

package aiff_test

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ik5/modpbx/formats/aiff"
)

func ExampleDecoder_Decode() {
	_, err := aiff.Decoder{}.Decode(bytes.NewReader([]byte("RIFF....WAVE")))
	fmt.Println(errors.Is(err, aiff.ErrNotAiffFile))
	// Output: true
}
