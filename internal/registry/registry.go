// Package registry maps language codes to speech models and resolves the
// on-disk model files backing them.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/book-expert/speech-service/internal/core"
)

// Model files are ONNX voice models laid out under the models directory as
// "<models_dir>/<model identifier>.onnx".
const modelFileExtension = ".onnx"

const languageListSeparator = ", "

// Registry is the static language-to-model mapping, resolved once at startup.
type Registry struct {
	models    map[string]string
	modelsDir string
}

// New creates a registry over the given language-to-model mapping. Model
// files are searched relative to modelsDir.
func New(models map[string]string, modelsDir string) *Registry {
	return &Registry{
		models:    models,
		modelsDir: modelsDir,
	}
}

// Languages returns the registered language codes in sorted order.
func (r *Registry) Languages() []string {
	languages := make([]string, 0, len(r.models))
	for code := range r.models {
		languages = append(languages, code)
	}

	sort.Strings(languages)

	return languages
}

// Resolve maps a language code to its model identifier and the absolute path
// of the model file. It returns core.ErrUnsupportedLanguage for unregistered
// codes and core.ErrModelNotFound when the model file is absent.
func (r *Registry) Resolve(language string) (string, string, error) {
	model, registered := r.models[language]
	if !registered {
		return "", "", fmt.Errorf(
			"%w: %q (supported: %s)",
			core.ErrUnsupportedLanguage,
			language,
			strings.Join(r.Languages(), languageListSeparator),
		)
	}

	modelPath, err := r.locateModelFile(model)
	if err != nil {
		return "", "", err
	}

	return model, modelPath, nil
}

// Validate confirms that every registered language has a discoverable model
// file. Run at startup so synthesis never races a missing model.
func (r *Registry) Validate() error {
	for _, language := range r.Languages() {
		_, _, err := r.Resolve(language)
		if err != nil {
			return fmt.Errorf("language %q: %w", language, err)
		}
	}

	return nil
}

// locateModelFile searches a prioritized candidate list for the model file:
// the models directory first, then the identifier taken as a literal path.
func (r *Registry) locateModelFile(model string) (string, error) {
	fileName := model + modelFileExtension

	candidatePaths := []string{
		filepath.Join(r.modelsDir, fileName),
		fileName,
	}

	for _, path := range candidatePaths {
		resolvedPath, found, err := resolveSinglePath(path)
		if err != nil {
			return "", err
		}

		if found {
			return resolvedPath, nil
		}
	}

	return "", fmt.Errorf("%w: %s", core.ErrModelNotFound, fileName)
}

// resolveSinglePath checks whether a file exists at path. A missing file is
// signalled through found=false; any other filesystem error is fatal to the
// search.
func resolveSinglePath(path string) (resolvedPath string, found bool, err error) {
	_, statErr := os.Stat(path)
	if statErr == nil {
		absPath, absErr := filepath.Abs(path)
		if absErr != nil {
			return "", false, fmt.Errorf(
				"could not resolve absolute path for %q: %w", path, absErr,
			)
		}

		return absPath, true, nil
	}

	if !os.IsNotExist(statErr) {
		return "", false, fmt.Errorf("error checking model path %q: %w", path, statErr)
	}

	return "", false, nil
}
