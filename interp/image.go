package interp

import (
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"
)

// ---------------------------------------------------------------------------
// Session images: checkpoint and restore a machine
// ---------------------------------------------------------------------------

// imageMagic identifies a bfx session image file.
var imageMagic = [4]byte{'B', 'F', 'X', 'I'}

// Image format version.
// v1: initial format
const imageVersion uint32 = 1

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("interp: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// sessionImage is the serialized form of a Machine. The loop table is not
// stored; it is rebuilt from the program buffer on load.
type sessionImage struct {
	Magic     [4]byte
	Version   uint32
	Prog      []byte
	Tape      []byte
	IP        int
	TP        int
	TPMax     int
	Line      int
	Col       int
	Receiving bool
}

// SaveImage writes the machine's complete state to path as a CBOR session
// image.
func (m *Machine) SaveImage(path string) error {
	img := sessionImage{
		Magic:     imageMagic,
		Version:   imageVersion,
		Prog:      m.prog,
		Tape:      m.tape,
		IP:        m.ip,
		TP:        m.tp,
		TPMax:     m.tpMax,
		Line:      m.pos.Line,
		Col:       m.pos.Col,
		Receiving: m.receiving,
	}
	data, err := cborEncMode.Marshal(&img)
	if err != nil {
		return fmt.Errorf("encode session image: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write session image: %w", err)
	}
	log.Debugf("saved session image to %s (%d bytes)", path, len(data))
	return nil
}

// LoadImage replaces the machine's state with the image at path and
// rebuilds the loop table from the restored program buffer.
func (m *Machine) LoadImage(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read session image: %w", err)
	}

	var img sessionImage
	if err := cbor.Unmarshal(data, &img); err != nil {
		return fmt.Errorf("decode session image: %w", err)
	}
	if img.Magic != imageMagic {
		return fmt.Errorf("%s is not a bfx session image", path)
	}
	if img.Version != imageVersion {
		return fmt.Errorf("unsupported session image version %d", img.Version)
	}
	if len(img.Tape) == 0 || img.TP < 0 || img.TP >= len(img.Tape) || img.IP < -1 || img.IP > len(img.Prog) {
		return fmt.Errorf("corrupt session image %s", path)
	}

	m.prog = m.prog[:0]
	m.Append(img.Prog)
	m.tape = img.Tape
	m.ip = img.IP
	m.tp = img.TP
	m.tpMax = img.TPMax
	m.pos = Position{Line: img.Line, Col: img.Col}
	m.receiving = img.Receiving
	return m.Rebuild()
}
