// Package shader compiles WGSL shader source into SPIR-V at runtime.
//
// A Compiler shares a process-wide compilation cache with every other live
// Compiler. The cache is created by the first NewCompiler call and dropped
// when the last Compiler is closed.
package shader

import (
	"crypto/sha256"
	"encoding/binary"
	"regexp"
	"strings"
	"sync"

	"github.com/gogpu/naga"
	"github.com/pkg/errors"
)

// EntryPoint is the function name every stage entry point must use.
const EntryPoint = "main"

// spirvMagic is the first word of every SPIR-V module.
const spirvMagic = 0x07230203

var (
	ErrUnsupportedStage  = errors.New("shader stage not supported by WGSL")
	ErrMissingEntryPoint = errors.New("shader source has no entry point for stage")
	ErrCompilerClosed    = errors.New("shader compiler is closed")
	ErrInvalidSPIRV      = errors.New("compiler produced invalid SPIR-V")
	ErrNoSource          = errors.New("no shader source")
)

// Compiled is a SPIR-V module for one stage. Code is consumed when the
// shader module is created and can be discarded after pipeline creation.
type Compiled struct {
	Stage      Stage
	EntryPoint string
	Code       []uint32
}

// SizeBytes is the code size as the GPU API expects it.
func (c Compiled) SizeBytes() uint {
	return uint(len(c.Code) * 4)
}

type cacheKey struct {
	stage Stage
	sum   [sha256.Size]byte
}

var process struct {
	sync.Mutex
	refs     int
	cache    map[cacheKey][]uint32
	compiles int
}

// Compiler turns WGSL into SPIR-V.
type Compiler struct {
	once   sync.Once
	closed bool
}

// NewCompiler acquires the process-wide compiler state.
func NewCompiler() *Compiler {
	process.Lock()
	defer process.Unlock()
	if process.refs == 0 {
		process.cache = make(map[cacheKey][]uint32)
	}
	process.refs++
	return &Compiler{}
}

// Close releases the compiler. The process-wide state is torn down with
// the last one. Close is idempotent.
func (c *Compiler) Close() {
	c.once.Do(func() {
		process.Lock()
		defer process.Unlock()
		c.closed = true
		process.refs--
		if process.refs == 0 {
			process.cache = nil
		}
	})
}

// Compile joins sources, checks they declare an entry point for stage and
// compiles them to SPIR-V words.
func (c *Compiler) Compile(sources []string, stage Stage) (Compiled, error) {
	if len(sources) == 0 {
		return Compiled{}, ErrNoSource
	}
	attr := stage.attribute()
	if attr == "" {
		return Compiled{}, errors.Wrapf(ErrUnsupportedStage, "stage %s", stage)
	}
	src := strings.Join(sources, "\n")
	if !hasEntryPoint(src, attr) {
		return Compiled{}, errors.Wrapf(ErrMissingEntryPoint, "stage %s: expected %s fn %s", stage, attr, EntryPoint)
	}

	key := cacheKey{stage: stage, sum: sha256.Sum256([]byte(src))}

	process.Lock()
	defer process.Unlock()
	if c.closed {
		return Compiled{}, ErrCompilerClosed
	}
	if code, ok := process.cache[key]; ok {
		return Compiled{Stage: stage, EntryPoint: EntryPoint, Code: code}, nil
	}

	spirv, err := naga.Compile(src)
	if err != nil {
		return Compiled{}, errors.Wrapf(err, "compile %s shader", stage)
	}
	process.compiles++
	code, err := toWords(spirv)
	if err != nil {
		return Compiled{}, errors.Wrapf(err, "compile %s shader", stage)
	}
	process.cache[key] = code
	return Compiled{Stage: stage, EntryPoint: EntryPoint, Code: code}, nil
}

var wgslComments = regexp.MustCompile(`(?s)/\*.*?\*/|//[^\n]*`)

// hasEntryPoint reports whether src declares fn main under the stage
// attribute, possibly after further attributes such as @workgroup_size.
// Comments are ignored.
func hasEntryPoint(src, attr string) bool {
	code := wgslComments.ReplaceAllString(src, " ")
	re := regexp.MustCompile(regexp.QuoteMeta(attr) +
		`(\s*@\w+(\s*\([^)]*\))?)*\s+fn\s+` + EntryPoint + `\s*\(`)
	return re.MatchString(code)
}

// toWords converts little-endian SPIR-V bytes to 32-bit words.
func toWords(spirv []byte) ([]uint32, error) {
	if len(spirv) < 4 || len(spirv)%4 != 0 {
		return nil, errors.Wrapf(ErrInvalidSPIRV, "length %d", len(spirv))
	}
	words := make([]uint32, len(spirv)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirv[i*4:])
	}
	if words[0] != spirvMagic {
		return nil, errors.Wrapf(ErrInvalidSPIRV, "magic 0x%08x", words[0])
	}
	return words, nil
}
