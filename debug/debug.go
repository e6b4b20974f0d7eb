package debug

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

type debug struct {
	LSB     bool
	LSF     bool
	LSX     bool
	LSJ     bool
	Convert bool
	Search  bool
}

var d *debug

func init() {
	d = &debug{}
	d.LSB = boolEnv("LS_DEBUG_LSB")
	d.LSF = boolEnv("LS_DEBUG_LSF")
	d.LSX = boolEnv("LS_DEBUG_LSX")
	d.LSJ = boolEnv("LS_DEBUG_LSJ")
	d.Convert = boolEnv("LS_DEBUG_CONVERT")
	d.Search = boolEnv("LS_DEBUG_SEARCH")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func LSB() bool {
	return d.LSB
}
func LSF() bool {
	return d.LSF
}
func LSX() bool {
	return d.LSX
}
func LSJ() bool {
	return d.LSJ
}
func Convert() bool {
	return d.Convert
}
func Search() bool {
	return d.Search
}

func LogAny(v any) {
	d, err := json.Marshal(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", v)
		return
	}
	os.Stderr.Write(d)
	os.Stderr.Write([]byte{'\n'})
}
