// SPDX-License-Identifier: EPL-2.0

package decoder

import "slices"

// SupportedExtensions lists the module file extensions libopenmpt accepts.
var SupportedExtensions = []string{
	"mptm", "mod", "s3m", "xm", "it",
	"667", "669", "amf", "ams", "c67", "cba", "dbm", "digi", "dmf", "dsm",
	"dsym", "dtm", "etx", "far", "fc", "fc13", "fc14", "fmt", "fst", "ftm",
	"imf", "ims", "ice", "j2b", "m15", "mdl", "med", "mms", "mt2", "mtm",
	"mus", "nst", "okt", "plm", "psm", "pt36", "ptm", "puma", "rtm", "sfx",
	"sfx2", "smod", "st26", "stk", "stm", "stx", "stp", "symmod", "tcb",
	"gmc", "gtk", "gt2", "ult", "unic", "wow", "xmf", "gdm",
	// compressed containers
	"mo3", "oxm", "umx", "xpk", "ppm", "mmcmp",
}

// IsSupported reports whether name carries a supported module extension.
func IsSupported(name string) bool {
	return slices.Contains(SupportedExtensions, Extension(name))
}
