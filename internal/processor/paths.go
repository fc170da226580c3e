package processor

import (
	"os"
	"strconv"
	"strings"
)

// AudioExt is the extension of every derived audio file
const AudioExt = ".mp3"

// DeriveAudioPath returns <path-without-extension>_<index>.mp3.
// The index keeps inputs with the same base name in different positions apart.
func DeriveAudioPath(videoPath string, index int) string {
	return stripExt(videoPath) + "_" + strconv.Itoa(index) + AudioExt
}

// DeriveAudioPaths maps every video path to its audio path, same order
func DeriveAudioPaths(videoPaths []string) []string {
	audioPaths := make([]string, len(videoPaths))
	for i, v := range videoPaths {
		audioPaths[i] = DeriveAudioPath(v, i)
	}
	return audioPaths
}

// SplitVideoPaths splits the comma-separated CLI argument.
// Entries are trimmed; empty entries are dropped.
func SplitVideoPaths(arg string) []string {
	var paths []string
	for _, p := range strings.Split(arg, ",") {
		if p = strings.TrimSpace(p); p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

// stripExt removes the final extension of the last path element.
// Leading dots do not start an extension, so ".env" is kept whole.
func stripExt(path string) string {
	name := path
	if i := strings.LastIndexAny(path, separators()); i >= 0 {
		name = path[i+1:]
	}

	dot := strings.LastIndexByte(name, '.')
	if dot < 0 || strings.TrimLeft(name[:dot], ".") == "" {
		return path
	}
	return path[:len(path)-(len(name)-dot)]
}

func separators() string {
	if os.PathSeparator == '/' {
		return "/"
	}
	return string(os.PathSeparator) + "/"
}
