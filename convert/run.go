// Package convert implements "convert" command: finds HTML pages in files,
// directories and zip archives and converts them to rich text markup.
package convert

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"

	"richtag/archive"
	"richtag/dom"
	"richtag/state"
)

// StdinName is used as SOURCE and DESTINATION to request standard streams.
const StdinName = "-"

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("convert")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	dst := cmd.Args().Get(1)
	if cmd.Args().Len() > 2 {
		log.Warn("Mailformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	if env.Lang = cmd.String("lang"); len(env.Lang) > 0 {
		env.CheckLanguage(env.Lang)
	} else {
		env.Lang = env.Cfg.Conversion.Language
	}

	env.Selector = cmd.String("select")
	if len(env.Selector) == 0 {
		env.Selector = env.Cfg.Conversion.Selector
	}

	if ext := cmd.String("ext"); len(ext) > 0 {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		env.Cfg.Output.Extension = ext
	}

	env.NoDirs, env.Overwrite = cmd.Bool("nodirs"), cmd.Bool("overwrite")

	// Neither zip "standard" defines file name encoding nor old pages always
	// declare their charset so we may need to force archaic code page
	cp := cmd.String("charset")
	if len(cp) > 0 {
		env.CodePage, err = ianaindex.IANA.Encoding(cp)
		if err != nil || env.CodePage == nil {
			log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", cp), zap.Error(err))
			env.CodePage = nil
		} else {
			n, _ := ianaindex.IANA.Name(env.CodePage)
			log.Debug("Forcefully decoding pages and non UTF-8 file names in archives", zap.String("charset", n))
		}
	}

	if env.Converter == nil {
		if err := env.PrepareConverter(); err != nil {
			return err
		}
	}

	if src == StdinName {
		in, out := cmd.Root().Reader, cmd.Root().Writer
		if in == nil {
			in = os.Stdin
		}
		if out == nil {
			out = os.Stdout
		}
		return processStream(ctx, in, out, dst, log)
	}

	if src, err = filepath.Abs(src); err != nil {
		return err
	}
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst), zap.String("lang", env.Lang))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, src, dst, log)
}

// process handles the core conversion logic independently of CLI framework. It
// determines the input type (directory, archive, or single file) and processes
// accordingly.
func process(ctx context.Context, src, dst string, log *zap.Logger) error {
	var head, tail string
	for head = src; len(head) != 0; head, tail = filepath.Split(head) {
		if err := ctx.Err(); err != nil {
			return err
		}

		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exists - probably path in archive
			continue
		}

		if fi.Mode().IsDir() {
			if len(tail) != 0 {
				// directory cannot have tail - it would be simple file
				return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
			}
			if err := processDir(ctx, head, dst, log); err != nil {
				storeSource(ctx, head, log)
				return fmt.Errorf("unable to process directory: %w", err)
			}
			break
		}

		if !fi.Mode().IsRegular() {
			return fmt.Errorf("unexpected path mode for (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}

		arc, err := isArchiveFile(head)
		if err != nil {
			// checking format - but cannot open target file
			return fmt.Errorf("unable to check archive type: %w", err)
		}
		if arc {
			// we need to look inside to see if path makes sense
			tail = strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator))
			if err := processArchive(ctx, head, filepath.ToSlash(tail), "", dst, log); err != nil {
				storeSource(ctx, head, log)
				return fmt.Errorf("unable to process archive: %w", err)
			}
			break
		}

		page, err := isPageFile(head)
		if err != nil {
			return fmt.Errorf("unable to check file type: %w", err)
		}
		if page && len(tail) == 0 {
			// explicitly named file does not have to have page extension
			if err := processFile(ctx, head, filepath.Base(head), dst, log); err != nil {
				storeSource(ctx, head, log)
				return err
			}
			return nil
		}
		return fmt.Errorf("input was not recognized as HTML page (%s)", head)
	}
	if len(head) == 0 {
		return fmt.Errorf("input source was not found (%s)", src)
	}
	return nil
}

// storeSource puts snapshot of failed source (file, archive or whole
// directory) into debug report.
func storeSource(ctx context.Context, path string, log *zap.Logger) {
	env := state.EnvFromContext(ctx)
	if env.Rpt == nil {
		return
	}
	if err := env.Rpt.StoreCopy("source/"+filepath.Base(path), path); err != nil {
		log.Warn("Unable to store source in report", zap.String("path", path), zap.Error(err))
	}
}

// processDir walks directory tree finding pages and archives and processes
// them in natural order of their paths. Failures do not stop processing and
// are returned together.
func processDir(ctx context.Context, dir, dst string, log *zap.Logger) (err error) {
	var paths []string
	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if d.Type().IsRegular() {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return err
	}
	sort.Sort(natural.StringSlice(paths))

	count := 0
	for _, path := range paths {
		if cerr := ctx.Err(); cerr != nil {
			return multierr.Append(err, cerr)
		}
		rel, _ := filepath.Rel(dir, path)

		arc, aerr := isArchiveFile(path)
		if aerr != nil {
			log.Warn("Skipping file", zap.String("file", path), zap.Error(aerr))
			continue
		}
		if arc {
			count++
			if perr := processArchive(ctx, path, "", filepath.Dir(rel), dst, log); perr != nil {
				log.Error("Unable to process archive", zap.String("file", path), zap.Error(perr))
				err = multierr.Append(err, perr)
			}
			continue
		}

		if !isPageName(path) {
			log.Debug("Skipping file, not recognized as page or archive", zap.String("file", path))
			continue
		}
		page, perr := isPageFile(path)
		if perr != nil || !page {
			log.Warn("Skipping file, content is not HTML", zap.String("file", path), zap.Error(perr))
			continue
		}

		count++
		if perr := processFile(ctx, path, rel, dst, log); perr != nil {
			err = multierr.Append(err, perr)
		}
	}

	if err == nil && count == 0 {
		log.Debug("Nothing to process", zap.String("dir", dir))
	}
	return err
}

// processArchive walks all pages inside archive under "pathIn" and processes
// them. Converted files are put under "pathOut" in destination.
func processArchive(ctx context.Context, path, pathIn, pathOut, dst string, log *zap.Logger) (err error) {
	env := state.EnvFromContext(ctx)

	count := 0
	var failed error
	err = archive.Walk(path, pathIn, isPageName, func(arc string, f *zip.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		count++

		name, derr := archive.DecodeName(f, env.CodePage)
		if derr != nil {
			n, _ := ianaindex.IANA.Name(env.CodePage)
			log.Warn("Unable to convert archive name from specified encoding",
				zap.String("charset", n), zap.String("path", name), zap.Error(derr))
		}

		r, oerr := f.Open()
		if oerr != nil {
			log.Error("Unable to process file in archive",
				zap.String("archive", arc), zap.String("file", f.FileHeader.Name), zap.Error(oerr))
			failed = multierr.Append(failed, oerr)
			return nil
		}
		defer r.Close()

		if perr := processPage(ctx, r, filepath.Join(pathOut, filepath.FromSlash(name)), dst, log); perr != nil {
			log.Error("Unable to process file in archive",
				zap.String("archive", arc), zap.String("file", f.FileHeader.Name), zap.Error(perr))
			failed = multierr.Append(failed, perr)
		}
		return nil
	})
	if err == nil && failed == nil && count == 0 {
		log.Debug("Nothing to process", zap.String("archive", path))
	}
	return multierr.Append(err, failed)
}

func processFile(ctx context.Context, path, src, dst string, log *zap.Logger) error {
	file, err := os.Open(path)
	if err != nil {
		log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
		return err
	}
	defer file.Close()

	if err := processPage(ctx, file, src, dst, log); err != nil {
		log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
		return err
	}
	return nil
}

// processStream converts page read from "in". Result goes to "out" unless
// destination directory was specified.
func processStream(ctx context.Context, in io.Reader, out io.Writer, dst string, log *zap.Logger) error {
	if len(dst) != 0 && dst != StdinName {
		dst, err := filepath.Abs(dst)
		if err != nil {
			return err
		}
		return processPage(ctx, in, "stdin.html", dst, log)
	}

	id := uuid.NewString()
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("unable to read input: %w", err)
	}
	text, err := convertPage(ctx, id, "stdin.html", data, log.With(zap.String("id", id)))
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, text)
	return err
}

// processPage converts single page. "src" is part of the source path (always
// including file name) relative to the original path. When actual file was
// specified it will be just base file name without a path. When looking
// inside archive or directory it will be relative path inside archive or
// directory (including base file name). "dst" is the destination directory
// where the converted file should be written.
func processPage(ctx context.Context, r io.Reader, src, dst string, log *zap.Logger) (rerr error) {
	env := state.EnvFromContext(ctx)

	id := uuid.NewString()
	log = log.With(zap.String("id", id))

	var outputName string

	log.Info("Conversion starting", zap.String("from", src))
	defer func(start time.Time) {
		if r := recover(); r != nil {
			log.Error("Conversion ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("conversion panic: %v", r)
		} else if rerr == nil {
			log.Info("Conversion completed", zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName))
		}
	}(time.Now())

	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("unable to read source (%s): %w", src, err)
	}

	text, err := convertPage(ctx, id, src, data, log)
	if err != nil {
		return err
	}

	// Determine output file name and path based on input and configuration.
	outputName = buildOutputPath(src, dst, id, env)

	// Check if output file already exists
	if _, err := os.Stat(outputName); err == nil {
		if !env.Overwrite {
			return fmt.Errorf("output file already exists: %s", outputName)
		}
		log.Warn("Overwriting existing file", zap.String("file", outputName))
	} else if !os.IsNotExist(err) {
		return err
	} else if err := os.MkdirAll(filepath.Dir(outputName), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	if err := os.WriteFile(outputName, []byte(text), 0644); err != nil {
		return fmt.Errorf("unable to write output: %w", err)
	}

	// Store conversion result for debugging
	if env.Rpt != nil {
		env.Rpt.Store(fmt.Sprintf("result-%s%s", id, filepath.Ext(outputName)), outputName)
	}
	return nil
}

// convertPage decodes page, selects fragment to convert and converts it. On
// failure input and whatever was left of the tree go to the debug report.
func convertPage(ctx context.Context, id, src string, data []byte, log *zap.Logger) (text string, rerr error) {
	env := state.EnvFromContext(ctx)

	var doc *dom.Document
	defer func() {
		if rerr == nil || env.Rpt == nil {
			return
		}
		env.Rpt.StoreData(fmt.Sprintf("failed-%s%s", id, filepath.Ext(src)), data)
		if doc != nil {
			env.Rpt.StoreData(fmt.Sprintf("failed-%s-tree.txt", id), []byte(doc.Dump()))
		}
	}()

	page, err := io.ReadAll(decodeReader(data, env.CodePage))
	if err != nil {
		return "", fmt.Errorf("unable to decode page (%s): %w", src, err)
	}
	// tree construction below drops some tags, look at the raw page first
	if err := env.Converter.CheckMarkup(bytes.NewReader(page)); err != nil {
		return "", fmt.Errorf("unable to convert (%s): %w", src, err)
	}

	fragment, err := extractFragment(bytes.NewReader(page), env.Selector)
	if err != nil {
		return "", fmt.Errorf("unable to select fragment (%s): %w", src, err)
	}
	log.Debug("Fragment selected", zap.String("selector", env.Selector), zap.Int("length", len(fragment)))

	if doc, err = dom.ParseString(fragment); err != nil {
		return "", fmt.Errorf("unable to parse fragment (%s): %w", src, err)
	}

	if text, err = env.Converter.ConvertDocument(doc, env.Lang); err != nil {
		return "", fmt.Errorf("unable to convert (%s): %w", src, err)
	}
	return text, nil
}
