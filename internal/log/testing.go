package log

type TB interface {
	Errorf(string, ...interface{})
	Fatalf(string, ...interface{})
	Logf(string, ...interface{})
	Helper()
}

// Testing logs to a test. Error fails the test, so code under test that is
// expected to log errors should get a Recorder instead.
type Testing struct {
	TB
	Default
}

func (l *Testing) Debug(m string, s ...interface{}) {
	l.Helper()
	l.Logf(tfmt("DEB ", m, s, l.Tags))
}
func (l *Testing) Info(m string, s ...interface{}) {
	l.Helper()
	l.Logf(tfmt("INF ", m, s, l.Tags))
}
func (l *Testing) Error(m string, s ...interface{}) {
	l.Helper()
	l.Errorf(tfmt("ERR ", m, s, l.Tags))
}
func (l *Testing) Crit(m string, s ...interface{}) {
	l.Helper()
	l.Fatalf(tfmt("CRI ", m, s, l.Tags))
}
func (l *Testing) With(tags ...interface{}) Logger {
	return &Testing{l.TB, *l.Default.with(tags)}
}

// Recorder keeps formatted messages in memory.
type Recorder struct {
	Lines *[]string
	Tags  []interface{}
}

func NewRecorder() *Recorder {
	return &Recorder{Lines: new([]string)}
}

func (r *Recorder) add(lvl, m string, s []interface{}) {
	*r.Lines = append(*r.Lines, tfmt(lvl, m, s, r.Tags))
}

func (r *Recorder) Debug(m string, s ...interface{}) { r.add("DEB ", m, s) }
func (r *Recorder) Info(m string, s ...interface{})  { r.add("INF ", m, s) }
func (r *Recorder) Error(m string, s ...interface{}) { r.add("ERR ", m, s) }
func (r *Recorder) Crit(m string, s ...interface{})  { r.add("CRI ", m, s) }
func (r *Recorder) With(tags ...interface{}) Logger {
	t := make([]interface{}, 0, len(tags)+len(r.Tags))
	t = append(t, tags...)
	t = append(t, r.Tags...)
	return &Recorder{Lines: r.Lines, Tags: t}
}
