package parcel

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/eluv-io/errors-go"
)

// WriteFile marshals the given record and writes it to the file at path,
// creating parent directories as needed.
func WriteFile(fs afero.Fs, path string, v Parcelable) error {
	e := errors.Template("parcel.WriteFile", errors.K.IO, "path", path)
	if path == "" {
		return e(errors.K.Invalid, "reason", "empty path")
	}
	b, err := Marshal(v)
	if err != nil {
		return e(errors.K.Invalid, err)
	}
	err = fs.MkdirAll(filepath.Dir(path), os.ModePerm)
	if err != nil {
		return e(err, "reason", "failed to create directory")
	}
	err = afero.WriteFile(fs, path, b, 0644)
	if err != nil {
		return e(err)
	}
	return nil
}

// ReadFile reads the file at path and unmarshals its content into v.
func ReadFile(fs afero.Fs, path string, v Parcelable) error {
	e := errors.Template("parcel.ReadFile", errors.K.IO, "path", path)
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return e(errors.K.NotExist, err)
		}
		return e(err)
	}
	err = Unmarshal(b, v)
	if err != nil {
		return e(errors.K.Invalid, err)
	}
	return nil
}
