package loader

import (
	"strings"

	"github.com/Carmen-Shannon/oxy-collada/common"
	"github.com/Carmen-Shannon/oxy-collada/engine/model"
)

// colladaImageExtractorImpl is the implementation of the colladaImageExtractor interface.
type colladaImageExtractorImpl struct {
	filePath string
}

// colladaImageExtractor defines the interface for decoding image declarations.
type colladaImageExtractor interface {
	// ExtractImage decodes one image element into an Image record.
	//
	// Parameters:
	//   - el: the image element
	//
	// Returns:
	//   - *model.Image: the decoded image
	//   - error: a SkippableElementError if the image names no file
	ExtractImage(el *colladaElement) (*model.Image, error)
}

var _ colladaImageExtractor = &colladaImageExtractorImpl{}

// newColladaImageExtractor creates a new image extractor resolving file names against filePath.
//
// Parameters:
//   - filePath: the scene base path
//
// Returns:
//   - colladaImageExtractor: the image extractor
func newColladaImageExtractor(filePath string) colladaImageExtractor {
	return &colladaImageExtractorImpl{filePath: filePath}
}

func (e *colladaImageExtractorImpl) ExtractImage(el *colladaElement) (*model.Image, error) {
	id := el.ID()

	// COLLADA 1.4 carries the file name as init_from text, 1.5 nests it in init_from/ref.
	var filename string
	if initFrom := el.Find(tagInitFrom); initFrom != nil {
		filename = initFrom.Text()
		if ref := initFrom.Child("ref"); ref != nil {
			filename = ref.Text()
		}
	}
	if filename == "" {
		return nil, skipElement(ElementImage, id, "no init_from file name")
	}

	return &model.Image{
		ID:       id,
		Name:     el.Attr(attrName),
		Filename: filename,
		Path:     e.resolve(filename),
	}, nil
}

// resolve joins a relative file name onto the base path. Absolute paths and
// references carrying a scheme are returned unchanged.
func (e *colladaImageExtractorImpl) resolve(filename string) string {
	if strings.HasPrefix(filename, "/") {
		return filename
	}
	return common.ResolvePath(e.filePath, strings.TrimPrefix(filename, "./"))
}
