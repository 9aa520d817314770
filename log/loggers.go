package log

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"
)

// Info takes a pointer subLogger struct and string sends to StageLogEvent
func Info(sl *SubLogger, data string) {
	mu.RLock()
	defer mu.RUnlock()
	fields := sl.getFields()
	fields.stage(fields.logger.InfoHeader, data)
}

// Infoln takes a pointer subLogger struct and interface sends to StageLogEvent
func Infoln(sl *SubLogger, v ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	fields := sl.getFields()
	fields.stage(fields.logger.InfoHeader, fmt.Sprint(v...))
}

// Infof takes a pointer subLogger struct, string and interface formats sends to StageLogEvent
func Infof(sl *SubLogger, data string, v ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	fields := sl.getFields()
	fields.stage(fields.logger.InfoHeader, fmt.Sprintf(data, v...))
}

// Debugf takes a pointer subLogger struct, string and interface formats sends to StageLogEvent
func Debugf(sl *SubLogger, data string, v ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	fields := sl.getFields()
	fields.stage(fields.logger.DebugHeader, fmt.Sprintf(data, v...))
}

// Warnf takes a pointer subLogger struct, string and interface formats sends to StageLogEvent
func Warnf(sl *SubLogger, data string, v ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	fields := sl.getFields()
	fields.stage(fields.logger.WarnHeader, fmt.Sprintf(data, v...))
}

// Errorln takes a pointer subLogger struct, string & interface formats and sends to StageLogEvent
func Errorln(sl *SubLogger, v ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	fields := sl.getFields()
	fields.stage(fields.logger.ErrorHeader, fmt.Sprint(v...))
}

// Errorf takes a pointer subLogger struct, string and interface formats sends to StageLogEvent
func Errorf(sl *SubLogger, data string, v ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	fields := sl.getFields()
	fields.stage(fields.logger.ErrorHeader, fmt.Sprintf(data, v...))
}

// WithFields attaches key/value pairs that are appended to every message
// logged through the returned value
func WithFields(sl *SubLogger, structuredFields map[string]interface{}) *logFields {
	mu.RLock()
	defer mu.RUnlock()
	fields := sl.getFields()
	if fields == nil {
		return nil
	}
	fields.fields = structuredFields
	return fields
}

// Infof logs an info message with the attached fields
func (l *logFields) Infof(data string, v ...interface{}) {
	if l == nil {
		return
	}
	mu.RLock()
	defer mu.RUnlock()
	l.stage(l.logger.InfoHeader, fmt.Sprintf(data, v...))
}

// Debugf logs a debug message with the attached fields
func (l *logFields) Debugf(data string, v ...interface{}) {
	if l == nil {
		return
	}
	mu.RLock()
	defer mu.RUnlock()
	l.stage(l.logger.DebugHeader, fmt.Sprintf(data, v...))
}

// Errorf logs an error message with the attached fields
func (l *logFields) Errorf(data string, v ...interface{}) {
	if l == nil {
		return
	}
	mu.RLock()
	defer mu.RUnlock()
	l.stage(l.logger.ErrorHeader, fmt.Sprintf(data, v...))
}

func (sl *SubLogger) getFields() *logFields {
	if sl == nil {
		return nil
	}
	return &logFields{
		info:   sl.levels.Info,
		warn:   sl.levels.Warn,
		debug:  sl.levels.Debug,
		error:  sl.levels.Error,
		name:   sl.name,
		output: sl.output,
		logger: logger,
	}
}

func displayError(err error) {
	if err != nil {
		log.Printf("Logger write error: %v\n", err)
	}
}

// enabled checks if the log level is enabled
func (l *logFields) enabled(header string) bool {
	switch header {
	case l.logger.InfoHeader:
		return l.info
	case l.logger.WarnHeader:
		return l.warn
	case l.logger.ErrorHeader:
		return l.error
	case l.logger.DebugHeader:
		return l.debug
	}
	return false
}

// stage formats and writes a log event
func (l *logFields) stage(header, data string) {
	if l == nil || l.output == nil || !l.enabled(header) {
		return
	}

	var b strings.Builder
	b.WriteString(header)
	if l.logger.ShowLogSystemName {
		b.WriteString(l.logger.Spacer)
		b.WriteString(l.name)
	}
	b.WriteString(l.logger.Spacer)
	if l.logger.TimestampFormat != "" {
		b.WriteString(time.Now().Format(l.logger.TimestampFormat))
		b.WriteString(l.logger.Spacer)
	}
	b.WriteString(data)
	if len(l.fields) > 0 {
		keys := make([]string, 0, len(l.fields))
		for k := range l.fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, l.fields[k])
		}
	}
	if !strings.HasSuffix(data, "\n") {
		b.WriteByte('\n')
	}

	_, err := l.output.Write([]byte(b.String()))
	displayError(err)
}
