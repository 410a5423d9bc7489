package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_LevelThreshold(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger("world", &buf, INFO)

	logger.Debug("скрытое сообщение")
	logger.Info("уровень моря %d", 4)

	out := buf.String()
	assert.NotContains(t, out, "скрытое сообщение", "DEBUG не должен выводиться при пороге INFO")
	assert.Contains(t, out, "[INFO] [world] уровень моря 4")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("DEBUG"))
	assert.Equal(t, ERROR, ParseLevel("ERROR"))
	assert.Equal(t, INFO, ParseLevel("nonsense"), "Неизвестный уровень должен давать INFO")
}

func TestLoggerManager_RegisterAndSetLevel(t *testing.T) {
	var buf bytes.Buffer
	lm := &LoggerManager{loggers: make(map[string]*Logger)}
	lm.Register("sim", NewWriterLogger("sim", &buf, ERROR))

	logger, err := lm.GetLogger("sim")
	require.NoError(t, err)

	logger.Warn("до смены уровня")
	require.NoError(t, lm.SetLogLevel("sim", TRACE, ERROR))
	logger.Trace("после смены уровня")

	assert.NotContains(t, buf.String(), "до смены уровня")
	assert.Contains(t, buf.String(), "после смены уровня")
	assert.Error(t, lm.SetLogLevel("missing", INFO, INFO), "Неизвестный компонент должен давать ошибку")
	assert.ElementsMatch(t, []string{"sim"}, lm.ListComponents())
}

func TestLoggerManager_ConsoleOnlyByDefault(t *testing.T) {
	lm := &LoggerManager{loggers: make(map[string]*Logger)}

	logger, err := lm.GetLogger("api")
	require.NoError(t, err)
	assert.Nil(t, logger.file, "Без EnableFileOutput логгер не должен открывать файл")

	again, err := lm.GetLogger("api")
	require.NoError(t, err)
	assert.Same(t, logger, again, "Повторный запрос должен возвращать тот же логгер")
	require.NoError(t, lm.CloseAll())
}

func TestLoggerManager_ConsoleLevelAppliesToLaterLoggers(t *testing.T) {
	var buf bytes.Buffer
	lm := &LoggerManager{loggers: make(map[string]*Logger)}
	early := NewWriterLogger("sim", &buf, INFO)
	lm.Register("sim", early)

	lm.SetConsoleLevel(DEBUG)
	early.Debug("ранний компонент")
	assert.Contains(t, buf.String(), "ранний компонент", "Уровень применяется к уже созданным логгерам")

	late, err := lm.GetLogger("api")
	require.NoError(t, err)
	assert.Equal(t, DEBUG, late.minConsoleLevel, "Логгер, созданный после настройки, получает тот же уровень")

	fallback := lm.MustGetLogger("api")
	assert.Same(t, late, fallback)
}
