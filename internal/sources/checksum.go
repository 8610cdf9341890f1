package sources

import (
	"crypto/md5"
	"encoding/hex"
	"io"
	"os"
)

// FileMD5 computes the MD5 digest of a file in 8 KiB chunks.
// Returns an empty string when the file does not exist.
func FileMD5(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	defer func() { _ = f.Close() }()

	h := md5.New()
	buf := make([]byte, 8192)
	for {
		n, rerr := f.Read(buf)
		if n > 0 {
			_, _ = h.Write(buf[:n])
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return "", rerr
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ShouldFetch reports whether localPath needs to be (re)downloaded.
// True when the file is absent or its MD5 differs from expectedHash.
func ShouldFetch(localPath, expectedHash string) bool {
	sum, err := FileMD5(localPath)
	if err != nil {
		return true
	}
	return sum != expectedHash
}
