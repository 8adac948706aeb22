package roadgraph

import (
	"bytes"
	"image"
	"image/png"
	"io/ioutil"

	"github.com/pkg/errors"
)

// savePNG to disk
func savePNG(fpath string, in image.Image) error {
	buff := new(bytes.Buffer)
	err := png.Encode(buff, in)
	if err != nil {
		return errors.Wrap(err, "can't encode png")
	}
	return errors.Wrapf(ioutil.WriteFile(fpath, buff.Bytes(), 0644), "can't write %s", fpath)
}
