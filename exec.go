package icopack

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/esimov/icopack/utils"
	"golang.org/x/term"
)

// maxWorkers sets the maximum number of concurrently running workers.
const maxWorkers = 20

// validExtensions lists the source image extensions picked up in directory mode.
var validExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".gif", ".webp", ".svg"}

// Ops describes the source and destination of an Execute run.
type Ops struct {
	Src, Dst, PipeName string
	Workers            int
	// Quiet disables the status lines printed to stderr.
	Quiet bool
}

// result holds the relevant information about the processed image.
type result struct {
	path string
	err  error
}

// Execute generates the icons described by op. The source can be a local
// file, a pipe, a URL or a directory, in which case every supported image
// found inside of it is converted concurrently into dst.
func (p *Processor) Execute(op *Ops) error {
	var (
		fs  os.FileInfo
		err error
	)
	if p.Spinner == nil {
		defaultMsg := fmt.Sprintf("%s %s",
			utils.DecorateText("⚡ ICOPACK", utils.StatusMessage),
			utils.DecorateText("⇢ generating icons...", utils.DefaultMessage),
		)
		p.Spinner = utils.NewSpinner(defaultMsg, time.Millisecond*80)
	}

	// Capture CTRL-C signal and restores back the cursor visibility.
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	defer func() {
		signal.Stop(signalChan)
		close(signalChan)
	}()
	go func() {
		if _, ok := <-signalChan; ok {
			p.Spinner.RestoreCursor()
			os.Exit(1)
		}
	}()

	src := op.Src
	// Check if source path is a local image or URL.
	if utils.IsValidUrl(op.Src) {
		f, err := utils.DownloadImage(op.Src)
		if err != nil {
			return fmt.Errorf("failed to load the source image: %w", err)
		}
		f.Close()
		defer os.Remove(f.Name())

		src = f.Name()
	}

	if src == op.PipeName {
		fs, err = os.Stdin.Stat()
	} else {
		fs, err = os.Stat(src)
	}
	if err != nil {
		return fmt.Errorf("failed to load the source image: %w", err)
	}

	now := time.Now()

	switch mode := fs.Mode(); {
	case mode.IsDir():
		if err := os.MkdirAll(op.Dst, 0755); err != nil {
			return fmt.Errorf("unable to create the destination directory: %w", err)
		}

		// Limit the concurrently running workers to maxWorkers.
		workers := op.Workers
		if workers <= 0 || workers > maxWorkers {
			workers = utils.Min(runtime.NumCPU(), maxWorkers)
		}

		var wg sync.WaitGroup
		ch := make(chan result)
		done := make(chan struct{})
		defer close(done)

		paths, errc := walkDir(done, src, validExtensions)
		outputs := &outputSet{owners: make(map[string]string)}

		wg.Add(workers)
		for i := 0; i < workers; i++ {
			go func() {
				defer wg.Done()
				op.consumer(p, src, op.Dst, outputs, ch, done, paths)
			}()
		}

		// Close the channel after the values are consumed.
		go func() {
			defer close(ch)
			wg.Wait()
		}()

		var errs []error
		for res := range ch {
			if res.err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", res.path, res.err))
			}
			op.printOpStatus(res.path, res.err)
		}
		if err := <-errc; err != nil {
			errs = append(errs, err)
		}
		if err := errors.Join(errs...); err != nil {
			return err
		}

	case mode.IsRegular() || mode&os.ModeNamedPipe != 0 || mode&os.ModeCharDevice != 0:
		ext := strings.ToLower(filepath.Ext(op.Dst))
		if !isValidExtension(ext, []string{".ico", ".png", ".bmp"}) && op.Dst != op.PipeName {
			return fmt.Errorf("%v file type not supported", ext)
		}

		err = op.process(p, src, op.Dst, !op.Quiet)
		op.printOpStatus(op.Dst, err)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported source %q", op.Src)
	}

	if !op.Quiet {
		fmt.Fprintf(os.Stderr, "\nExecution time: %s\n", utils.DecorateText(utils.FormatTime(time.Since(now)), utils.SuccessMessage))
	}
	return nil
}

// consumer reads the path names from the paths channel and calls the processor against the source image.
// Outputs keep the directory layout of the sources below dest.
func (op *Ops) consumer(
	p *Processor,
	root, dest string,
	outputs *outputSet,
	res chan<- result,
	done <-chan struct{},
	paths <-chan string,
) {
	for src := range paths {
		out, err := outputPath(root, dest, src)
		if err == nil {
			err = outputs.claim(out, src)
		}
		if err == nil {
			err = os.MkdirAll(filepath.Dir(out), 0755)
		}
		if err == nil {
			err = op.process(p, src, out, false)
		}

		select {
		case <-done:
			return
		case res <- result{
			path: src,
			err:  err,
		}:
		}
	}
}

// outputPath maps a source found under root to its icon path under dest.
func outputPath(root, dest, src string) (string, error) {
	rel, err := filepath.Rel(root, src)
	if err != nil {
		return "", err
	}
	return filepath.Join(dest, strings.TrimSuffix(rel, filepath.Ext(rel))+".ico"), nil
}

// outputSet records which source produced each output file, so sources
// sharing a base name in one directory (x.png, x.jpg) do not overwrite each other.
type outputSet struct {
	mu     sync.Mutex
	owners map[string]string
}

func (o *outputSet) claim(out, src string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if owner, ok := o.owners[out]; ok {
		return fmt.Errorf("%s is already generated from %s", out, owner)
	}
	o.owners[out] = src
	return nil
}

// process calls the processor over the source image and returns the error in case exists.
// The spinner is shared, so only single file runs animate it.
func (op *Ops) process(p *Processor, in, out string, spin bool) error {
	if spin {
		p.Spinner.Start()
	}

	successMsg := fmt.Sprintf("%s %s %s",
		utils.DecorateText("⚡ ICOPACK", utils.StatusMessage),
		utils.DecorateText("⇢", utils.DefaultMessage),
		utils.DecorateText("the icon has been generated successfully ✔", utils.SuccessMessage),
	)
	errorMsg := fmt.Sprintf("%s %s %s",
		utils.DecorateText("⚡ ICOPACK", utils.StatusMessage),
		utils.DecorateText("generating icon failed...", utils.DefaultMessage),
		utils.DecorateText("✘", utils.ErrorMessage),
	)

	stop := func(msg string) {
		if spin {
			p.Spinner.StopMsg = msg
			p.Spinner.Stop()
		}
	}

	src, dst, err := op.pathToFile(in, out)
	if err != nil {
		stop(errorMsg)
		return err
	}

	defer func() {
		if f, ok := src.(*os.File); ok && f != os.Stdin {
			if err := f.Close(); err != nil {
				log.Printf("could not close the opened file: %v", err)
			}
		}
	}()

	err = p.Process(src, dst)
	if f, ok := dst.(*os.File); ok && f != os.Stdout {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if err != nil {
			// remove the generated image file in case of an error
			os.Remove(f.Name())
		}
	}
	if err != nil {
		stop(errorMsg)
		return err
	}
	stop(successMsg)

	return nil
}

// pathToFile converts the source and destination paths to readable and writable files.
func (op *Ops) pathToFile(in, out string) (io.Reader, io.Writer, error) {
	var (
		src io.Reader
		dst io.Writer
		err error
	)
	// Check if the source is a pipe name or a regular file.
	if in == op.PipeName {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			return nil, nil, errors.New("`-` should be used with a pipe for stdin")
		}
		src = os.Stdin
	} else {
		src, err = os.Open(in)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to open the source file: %w", err)
		}
	}

	// Check if the destination is a pipe name or a regular file.
	if out == op.PipeName {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			if f, ok := src.(*os.File); ok && f != os.Stdin {
				f.Close()
			}
			return nil, nil, errors.New("`-` should be used with a pipe for stdout")
		}
		dst = os.Stdout
	} else {
		dst, err = os.OpenFile(out, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			if f, ok := src.(*os.File); ok && f != os.Stdin {
				f.Close()
			}
			return nil, nil, fmt.Errorf("unable to create the destination file: %w", err)
		}
	}
	return src, dst, nil
}

// printOpStatus displays the relevant information about the icon generation.
func (op *Ops) printOpStatus(fname string, err error) {
	if op.Quiet {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s%s",
			utils.DecorateText("\nError generating the icon: ", utils.ErrorMessage),
			utils.DecorateText(fmt.Sprintf("\n\tReason: %v\n", err.Error()), utils.DefaultMessage),
		)
		return
	}
	if fname != op.PipeName {
		fmt.Fprintf(os.Stderr, "\nThe icon has been saved as: %s %s\n\n",
			utils.DecorateText(filepath.Base(fname), utils.SuccessMessage),
			utils.DefaultColor,
		)
	}
}

// walkDir starts a new goroutine to walk the specified directory tree
// in recursive manner and sends the path of each regular file to a new channel.
// It finishes in case the done channel is getting closed.
func walkDir(
	done <-chan struct{},
	src string,
	srcExts []string,
) (<-chan string, <-chan error) {
	pathChan := make(chan string)
	errChan := make(chan error, 1)

	go func() {
		// Close the paths channel after Walk returns.
		defer close(pathChan)

		errChan <- filepath.Walk(src, func(path string, f os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !f.Mode().IsRegular() {
				return nil
			}

			if isValidExtension(strings.ToLower(filepath.Ext(f.Name())), srcExts) {
				select {
				case <-done:
					return errors.New("directory walk cancelled")
				case pathChan <- path:
				}
			}
			return nil
		})
	}()
	return pathChan, errChan
}

// isValidExtension checks for the supported extensions.
func isValidExtension(ext string, extensions []string) bool {
	return utils.Contains(extensions, ext)
}
