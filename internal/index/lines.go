package index

import (
	"bytes"

	mudio "github.com/mudlark/mudlark/internal/io"
)

// LineIndex stores the byte offset of every line start in a
// transcript, so lines can be fetched by number in O(1).
type LineIndex struct {
	offsets []int64
	file    *mudio.MappedFile
}

// BuildLineIndex scans the transcript once and records line starts.
func BuildLineIndex(file *mudio.MappedFile) (*LineIndex, error) {
	size := file.Size()
	if size == 0 {
		return &LineIndex{offsets: []int64{0}, file: file}, nil
	}

	// Markup lines run long; assume ~120 bytes for the initial guess.
	offsets := make([]int64, 0, int(size/120)+1)
	offsets = append(offsets, 0)

	const chunkSize = 64 * 1024
	buf := make([]byte, chunkSize)

	var pos int64
	for pos < size {
		readSize := chunkSize
		if pos+int64(readSize) > size {
			readSize = int(size - pos)
		}

		n, err := file.ReadAt(buf[:readSize], pos)
		if err != nil {
			return nil, err
		}

		chunk := buf[:n]
		offset := 0
		for {
			idx := bytes.IndexByte(chunk[offset:], '\n')
			if idx == -1 {
				break
			}
			lineStart := pos + int64(offset) + int64(idx) + 1
			if lineStart < size {
				offsets = append(offsets, lineStart)
			}
			offset += idx + 1
		}

		pos += int64(n)
	}

	return &LineIndex{offsets: offsets, file: file}, nil
}

// AppendNewLines indexes line starts added after the transcript grew
// past oldSize. The scan starts one byte early to catch a newline that
// sat exactly on the old end of file.
func (idx *LineIndex) AppendNewLines(oldSize int64) error {
	size := idx.file.Size()

	pos := oldSize - 1
	if pos < 0 {
		pos = 0
	}

	const chunkSize = 64 * 1024
	buf := make([]byte, chunkSize)

	for pos < size {
		readSize := chunkSize
		if pos+int64(readSize) > size {
			readSize = int(size - pos)
		}

		n, err := idx.file.ReadAt(buf[:readSize], pos)
		if err != nil {
			return err
		}

		chunk := buf[:n]
		offset := 0
		for {
			i := bytes.IndexByte(chunk[offset:], '\n')
			if i == -1 {
				break
			}
			lineStart := pos + int64(offset) + int64(i) + 1
			if lineStart < size && lineStart > idx.offsets[len(idx.offsets)-1] {
				idx.offsets = append(idx.offsets, lineStart)
			}
			offset += i + 1
		}

		pos += int64(n)
	}

	return nil
}

// LineCount returns the total number of lines.
func (idx *LineIndex) LineCount() int {
	return len(idx.offsets)
}

// GetLine returns the content of the line at the given 0-based index,
// without its trailing newline. Out-of-range indexes yield nil.
func (idx *LineIndex) GetLine(lineNum int) ([]byte, error) {
	if lineNum < 0 || lineNum >= len(idx.offsets) {
		return nil, nil
	}

	start := idx.offsets[lineNum]
	var end int64
	if lineNum+1 < len(idx.offsets) {
		end = idx.offsets[lineNum+1]
	} else {
		end = idx.file.Size()
	}

	content, err := idx.file.ReadRange(start, end)
	if err != nil {
		return nil, err
	}

	return bytes.TrimRight(content, "\r\n"), nil
}

// GetLines returns a range of lines, clamped to the index bounds.
func (idx *LineIndex) GetLines(start, count int) ([][]byte, error) {
	if start < 0 {
		start = 0
	}
	if start >= len(idx.offsets) {
		return nil, nil
	}
	if start+count > len(idx.offsets) {
		count = len(idx.offsets) - start
	}

	lines := make([][]byte, count)
	for i := 0; i < count; i++ {
		line, err := idx.GetLine(start + i)
		if err != nil {
			return nil, err
		}
		lines[i] = line
	}
	return lines, nil
}
