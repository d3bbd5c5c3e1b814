package netx

import "io"

// Chunks splits body into consecutive slices of at most size bytes. The
// slices alias body. A non-positive size falls back to DefaultChunkSize.
func Chunks(body []byte, size int) [][]byte {
	if size <= 0 {
		size = DefaultChunkSize
	}
	out := make([][]byte, 0, (len(body)+size-1)/size)
	for off := 0; off < len(body); off += size {
		end := min(off+size, len(body))
		out = append(out, body[off:end:end])
	}
	return out
}

// writeChunks hands body to w one chunk at a time and reports the cumulative
// count after each write returns. It stops at the first write error.
func writeChunks(w io.Writer, body []byte, size int, onSent func(int64)) error {
	var sent int64
	for _, chunk := range Chunks(body, size) {
		if _, err := w.Write(chunk); err != nil {
			return err
		}
		sent += int64(len(chunk))
		if onSent != nil {
			onSent(sent)
		}
	}
	return nil
}
