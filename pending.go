package bimrsid

import (
	"os"
	"path/filepath"

	"github.com/carbocation/genomisc"
	"github.com/carbocation/pfx"
)

// pendingFile is an output written under a temporary name in the target
// directory. It only appears at its final path once Commit succeeds, so a
// failed pass never leaves a file that looks complete.
type pendingFile struct {
	*os.File
	path string
	done bool
}

func createPending(path string) (*pendingFile, error) {
	path = genomisc.ExpandHome(path)
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, pfx.Err(err)
	}

	return &pendingFile{File: f, path: path}, nil
}

func (p *pendingFile) Commit() error {
	if p.done {
		return nil
	}
	p.done = true

	if err := p.File.Sync(); err != nil {
		p.discard()
		return pfx.Err(err)
	}
	if err := p.File.Close(); err != nil {
		os.Remove(p.File.Name())
		return pfx.Err(err)
	}
	if err := os.Chmod(p.File.Name(), 0o644); err != nil {
		os.Remove(p.File.Name())
		return pfx.Err(err)
	}
	if err := os.Rename(p.File.Name(), p.path); err != nil {
		os.Remove(p.File.Name())
		return pfx.Err(err)
	}

	return nil
}

// Abort removes the temporary file. It is a no-op after Commit.
func (p *pendingFile) Abort() {
	if p.done {
		return
	}
	p.done = true
	p.discard()
}

func (p *pendingFile) discard() {
	p.File.Close()
	os.Remove(p.File.Name())
}
