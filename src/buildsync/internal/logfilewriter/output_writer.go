// Package logfilewriter keeps human readable build output in a file that clients can tail.
package logfilewriter

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/internal/fs"
	"github.com/eclipse-buildship/buildship-sub001/src/buildsync/internal/serverinfofile"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	_fmtOutputKey     = "output:%s"
	_buildOutputName  = "gradle"
	_logsDirPrefix    = "buildsync-"
	_logFilePrefixFmt = "%s-"
)

// Module provides the writer receiving the build tool output, tagged name:"buildOutput".
var Module = fx.Provide(
	fx.Annotate(NewBuildOutput, fx.ResultTags(`name:"buildOutput"`)),
)

// Params define the dependencies for SetupOutputWriter.
type Params struct {
	fx.In

	FS             fs.BuildsyncFS
	Lifecycle      fx.Lifecycle
	ServerInfoFile serverinfofile.ServerInfoFile
}

// NewBuildOutput sets up the output file of the build tool invocations.
func NewBuildOutput(p Params) (io.Writer, error) {
	return SetupOutputWriter(p, _buildOutputName)
}

// SetupOutputWriter creates a writer whose lines are appended, timestamped, to a file under the temporary directory.
// The file path is published in the server info file under "output:<name>" and the file is removed on shutdown.
func SetupOutputWriter(p Params, name string) (io.Writer, error) {
	logsDirPath := filepath.Join(os.TempDir(), _logsDirPrefix+name)
	if err := p.FS.MkdirAll(logsDirPath); err != nil {
		return nil, err
	}

	logFile, err := p.FS.TempFile(logsDirPath, fmt.Sprintf(_logFilePrefixFmt, name))
	if err != nil {
		return nil, err
	}

	if err := p.ServerInfoFile.UpdateField(fmt.Sprintf(_fmtOutputKey, name), logFile.Name()); err != nil {
		logFile.Close()
		return nil, fmt.Errorf("publishing output file: %w", err)
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(logFile),
		zap.InfoLevel,
	)
	outputLogger := zap.New(core).Sugar()

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			_ = outputLogger.Sync()
			logFile.Close()
			return p.FS.Remove(logFile.Name())
		},
	})

	return &loggerWriter{logger: outputLogger}, nil
}

type loggerWriter struct {
	logger *zap.SugaredLogger
}

// Write logs every non empty line of p.
func (o *loggerWriter) Write(p []byte) (n int, err error) {
	for _, line := range strings.Split(string(p), "\n") {
		if line = strings.TrimRight(line, "\r"); line != "" {
			o.logger.Info(line)
		}
	}
	return len(p), nil
}
