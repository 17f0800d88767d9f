package convert

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/h2non/filetype"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// enough for both filetype signatures and charset prescan
const sniffLen = 1024

var (
	pageExtensions = []string{".html", ".htm", ".xhtml"}
	htmlType       = filetype.NewType("html", "text/html")
	utf8BOM        = []byte{0xEF, 0xBB, 0xBF}
)

func init() {
	filetype.AddMatcher(htmlType, htmlMatcher)
}

// htmlMatcher recognizes markup: after optional BOM and white space buffer
// must start with a tag, comment or doctype.
func htmlMatcher(buf []byte) bool {
	if len(buf) >= 3 && buf[0] == utf8BOM[0] && buf[1] == utf8BOM[1] && buf[2] == utf8BOM[2] {
		buf = buf[3:]
	}
	for len(buf) > 0 && strings.ContainsRune(" \t\r\n\f", rune(buf[0])) {
		buf = buf[1:]
	}
	return len(buf) > 1 && buf[0] == '<' && (buf[1] == '!' || buf[1] == '/' || isASCIILetter(buf[1]))
}

func isASCIILetter(b byte) bool {
	return ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

func readHead(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, err
	}
	return buf[:n], nil
}

// isArchiveFile checks if file has zip extension and zip signature.
func isArchiveFile(path string) (bool, error) {
	if !strings.EqualFold(filepath.Ext(path), ".zip") {
		return false, nil
	}
	head, err := readHead(path)
	if err != nil {
		return false, err
	}
	return filetype.Is(head, "zip"), nil
}

// PageExtensions returns extensions of files considered to be pages when
// walking directories and archives.
func PageExtensions() []string {
	return slices.Clone(pageExtensions)
}

// isPageName checks extension of the file name in directory or archive.
func isPageName(name string) bool {
	return slices.Contains(pageExtensions, strings.ToLower(filepath.Ext(name)))
}

// isPageContent rejects files which are known to be something other than
// text. Fragments without any markup are still pages.
func isPageContent(head []byte) bool {
	kind, _ := filetype.Match(head)
	return kind == filetype.Unknown || kind == htmlType
}

// isPageFile checks file on disk.
func isPageFile(path string) (bool, error) {
	head, err := readHead(path)
	if err != nil {
		return false, err
	}
	return isPageContent(head), nil
}

// decodeReader returns UTF-8 reader for page content. When code page is forced
// it is used for everything but content starting with BOM. Otherwise encoding
// is determined the way browsers do it (BOM, <meta> prescan, UTF-8 detection)
// except that UTF-8 detection looks at the whole content rather than at the
// first kilobyte.
func decodeReader(data []byte, cp encoding.Encoding) io.Reader {
	r := bytes.NewReader(data)
	if cp != nil {
		return transform.NewReader(r, unicode.BOMOverride(cp.NewDecoder()))
	}
	e, name, certain := charset.DetermineEncoding(data, "text/html")
	if !certain && name == "windows-1252" && utf8.Valid(data) {
		e = encoding.Nop
	}
	return transform.NewReader(r, unicode.BOMOverride(e.NewDecoder()))
}
