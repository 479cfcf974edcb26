package transport

// Split cuts data into consecutive chunks of at most max bytes. Data that fits
// in one chunk, including empty data, yields exactly one chunk. Chunks share
// data's backing array but are capped so appending to one cannot clobber the next.
func Split(data []byte, max int) [][]byte {
	if max <= 0 || len(data) <= max {
		return [][]byte{data[:len(data):len(data)]}
	}

	chunks := make([][]byte, 0, (len(data)+max-1)/max)
	for start := 0; start < len(data); start += max {
		end := start + max
		if end > len(data) {
			end = len(data)
		}
		chunks = append(chunks, data[start:end:end])
	}
	return chunks
}
