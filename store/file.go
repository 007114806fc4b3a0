package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/markleyboyer/subway-equidistance/transit"
)

// 本地JSON文件
type File struct {
	Path string
}

func NewFile(path string) *File {
	return &File{Path: path}
}

func (f *File) Load(ctx context.Context) (*transit.Dataset, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	d, err := transit.ReadDataset(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Path, err)
	}
	log.Infof("loaded %d stations from %s", len(d.Stations), f.Path)
	return d, nil
}

// 先写临时文件再改名
func (f *File) Save(ctx context.Context, d *transit.Dataset) error {
	dir := filepath.Dir(f.Path)
	tmp, err := os.CreateTemp(dir, filepath.Base(f.Path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if err := d.Write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), f.Path); err != nil {
		return err
	}
	log.Infof("saved %d stations to %s", len(d.Stations), f.Path)
	return nil
}

func (f *File) Close(ctx context.Context) error {
	return nil
}
