// SPDX-License-Identifier: EPL-2.0

//go:build libopenmpt

package openmpt

/*
#cgo pkg-config: libopenmpt
#include <stdlib.h>
#include <libopenmpt/libopenmpt.h>
*/
import "C"

import (
	"context"
	"fmt"
	"math"
	"unsafe"

	"github.com/ik5/modpbx/decoder"
)

func checkLibrary(context.Context) error {
	v := uint32(C.openmpt_get_library_version())
	if major := v >> 24; major != uint32(C.OPENMPT_API_VERSION_MAJOR) {
		return fmt.Errorf("%w: runtime major version %d, built for %d",
			decoder.ErrLibraryUnavailable, major, int(C.OPENMPT_API_VERSION_MAJOR))
	}
	return nil
}

// Version returns the runtime library version as major.minor.patch.
func Version() string {
	v := uint32(C.openmpt_get_library_version())
	return fmt.Sprintf("%d.%d.%d", v>>24, (v>>16)&0xff, v&0xffff)
}

var _ decoder.Handle = (*module)(nil)

type module struct {
	mod *C.openmpt_module
}

func openModule(data []byte) (decoder.Handle, error) {
	var (
		code C.int
		msg  *C.char
	)

	mod := C.openmpt_module_create_from_memory2(
		unsafe.Pointer(&data[0]), C.size_t(len(data)),
		nil, nil, // log
		nil, nil, // error callback
		&code, &msg,
		nil,
	)
	if mod == nil {
		reason := "unknown error"
		if msg != nil {
			reason = C.GoString(msg)
			C.openmpt_free_string(msg)
		}
		return nil, fmt.Errorf("%w: %s (code %d)", decoder.ErrOpenFailed, reason, int(code))
	}
	if msg != nil {
		C.openmpt_free_string(msg)
	}

	return &module{mod: mod}, nil
}

func (m *module) ReadInterleavedStereo(sampleRate int, dst []float32) (int, error) {
	if m.mod == nil {
		return 0, decoder.ErrClosed
	}
	frames := len(dst) / 2
	if frames == 0 {
		return 0, nil
	}

	n := C.openmpt_module_read_interleaved_float_stereo(
		m.mod, C.int32_t(sampleRate), C.size_t(frames), (*C.float)(unsafe.Pointer(&dst[0])))
	return int(n), nil
}

func (m *module) Position() float64 {
	if m.mod == nil {
		return 0
	}
	return float64(C.openmpt_module_get_position_seconds(m.mod))
}

func (m *module) SetPosition(seconds float64) (float64, error) {
	if m.mod == nil {
		return 0, decoder.ErrClosed
	}
	return float64(C.openmpt_module_set_position_seconds(m.mod, C.double(seconds))), nil
}

func (m *module) Duration() float64 {
	if m.mod == nil {
		return 0
	}
	d := float64(C.openmpt_module_get_duration_seconds(m.mod))
	if math.IsNaN(d) || d < 0 {
		return 0
	}
	return d
}

func (m *module) Metadata(key string) string {
	if m.mod == nil {
		return ""
	}

	ckey := C.CString(key)
	defer C.free(unsafe.Pointer(ckey))

	v := C.openmpt_module_get_metadata(m.mod, ckey)
	if v == nil {
		return ""
	}
	defer C.openmpt_free_string(v)

	return C.GoString(v)
}

func (m *module) CurrentOrder() int {
	if m.mod == nil {
		return -1
	}
	return int(C.openmpt_module_get_current_order(m.mod))
}

func (m *module) CurrentPattern() int {
	if m.mod == nil {
		return -1
	}
	return int(C.openmpt_module_get_current_pattern(m.mod))
}

func (m *module) CurrentRow() int {
	if m.mod == nil {
		return -1
	}
	return int(C.openmpt_module_get_current_row(m.mod))
}

func (m *module) NumChannels() int {
	if m.mod == nil {
		return 0
	}
	return int(C.openmpt_module_get_num_channels(m.mod))
}

func (m *module) NumPatterns() int {
	if m.mod == nil {
		return 0
	}
	return int(C.openmpt_module_get_num_patterns(m.mod))
}

func (m *module) NumOrders() int {
	if m.mod == nil {
		return 0
	}
	return int(C.openmpt_module_get_num_orders(m.mod))
}

func (m *module) NumInstruments() int {
	if m.mod == nil {
		return 0
	}
	return int(C.openmpt_module_get_num_instruments(m.mod))
}

func (m *module) NumSamples() int {
	if m.mod == nil {
		return 0
	}
	return int(C.openmpt_module_get_num_samples(m.mod))
}

func (m *module) SetRepeatCount(n int) error {
	if m.mod == nil {
		return decoder.ErrClosed
	}
	if C.openmpt_module_set_repeat_count(m.mod, C.int32_t(n)) == 0 {
		return fmt.Errorf("set repeat count %d: %w", n, decoder.ErrUnsupportedParam)
	}
	return nil
}

func (m *module) RepeatCount() int {
	if m.mod == nil {
		return 0
	}
	return int(C.openmpt_module_get_repeat_count(m.mod))
}

func renderParam(p decoder.RenderParam) (C.int, error) {
	switch p {
	case decoder.MasterGainMillibel:
		return C.OPENMPT_MODULE_RENDER_MASTERGAIN_MILLIBEL, nil
	case decoder.StereoSeparationPercent:
		return C.OPENMPT_MODULE_RENDER_STEREOSEPARATION_PERCENT, nil
	default:
		return 0, fmt.Errorf("%s: %w", p, decoder.ErrUnsupportedParam)
	}
}

func (m *module) SetRenderParam(p decoder.RenderParam, value int) error {
	if m.mod == nil {
		return decoder.ErrClosed
	}
	cp, err := renderParam(p)
	if err != nil {
		return err
	}
	if C.openmpt_module_set_render_param(m.mod, cp, C.int32_t(value)) == 0 {
		return fmt.Errorf("%s=%d: %w", p, value, decoder.ErrUnsupportedParam)
	}
	return nil
}

func (m *module) RenderParam(p decoder.RenderParam) (int, error) {
	if m.mod == nil {
		return 0, decoder.ErrClosed
	}
	cp, err := renderParam(p)
	if err != nil {
		return 0, err
	}

	var v C.int32_t
	if C.openmpt_module_get_render_param(m.mod, cp, &v) == 0 {
		return 0, fmt.Errorf("%s: %w", p, decoder.ErrUnsupportedParam)
	}
	return int(v), nil
}

func (m *module) SetCtlFloat(key string, value float64) error {
	if m.mod == nil {
		return decoder.ErrClosed
	}

	ckey := C.CString(key)
	defer C.free(unsafe.Pointer(ckey))

	if C.openmpt_module_ctl_set_floatingpoint(m.mod, ckey, C.double(value)) == 0 {
		return fmt.Errorf("%s: %w", key, decoder.ErrUnsupportedParam)
	}
	return nil
}

func (m *module) CtlFloat(key string) (float64, error) {
	if m.mod == nil {
		return 0, decoder.ErrClosed
	}

	ckey := C.CString(key)
	defer C.free(unsafe.Pointer(ckey))

	return float64(C.openmpt_module_ctl_get_floatingpoint(m.mod, ckey)), nil
}

func (m *module) Close() error {
	if m.mod != nil {
		C.openmpt_module_destroy(m.mod)
		m.mod = nil
	}
	return nil
}
