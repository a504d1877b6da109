package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/midbel/cli"
	"github.com/midbel/slax/slax"
	"github.com/midbel/slax/xml"
)

var playCmd = cli.Command{
	Name:    "play",
	Summary: "edit a SLAX script and see the stylesheet it compiles to",
	Handler: &PlayCmd{},
}

type PlayCmd struct {
	File string
}

func (c *PlayCmd) Run(args []string) error {
	set := flag.NewFlagSet("play", flag.ContinueOnError)
	if err := set.Parse(args); err != nil {
		return err
	}
	c.File = set.Arg(0)

	var script string
	if c.File != "" {
		buf, err := os.ReadFile(c.File)
		if err != nil && !os.IsNotExist(err) {
			return err
		}
		script = string(buf)
	}
	_, err := tea.NewProgram(createPlayground(c.File, script)).Run()
	return err
}

type viewMode int8

const (
	viewXslt viewMode = iota
	viewSlax
)

func (v viewMode) String() string {
	if v == viewSlax {
		return "slax"
	}
	return "xslt"
}

var (
	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	titleStyle  = lipgloss.NewStyle().Bold(true)
)

type playground struct {
	file   string
	editor textarea.Model
	mode   viewMode

	output string
	err    error
	status string

	width  int
	height int
}

func createPlayground(file, script string) playground {
	ed := textarea.New()
	ed.Placeholder = "match / { ... }"
	ed.ShowLineNumbers = true
	ed.SetValue(script)
	ed.Focus()

	p := playground{
		file:   file,
		editor: ed,
	}
	p.refresh()
	return p
}

func (p playground) Init() tea.Cmd {
	return nil
}

func (p playground) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width, p.height = msg.Width, msg.Height
		p.editor.SetWidth(p.paneWidth())
		p.editor.SetHeight(p.paneHeight())
		return p, nil
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return p, tea.Quit
		case "tab":
			p.mode = (p.mode + 1) % 2
			p.refresh()
			return p, nil
		case "ctrl+s":
			p.save()
			return p, nil
		}
	}
	var cmd tea.Cmd
	before := p.editor.Value()
	p.editor, cmd = p.editor.Update(msg)
	if p.editor.Value() != before {
		p.refresh()
	}
	return p, cmd
}

func (p playground) View() tea.View {
	var result string
	if p.err != nil {
		result = errorStyle.Render(p.err.Error())
	} else {
		result = p.output
	}
	left := paneStyle.Render(lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("slax"), p.editor.View()))
	right := paneStyle.
		Width(p.paneWidth()).
		Render(lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(p.mode.String()), clip(result, p.paneHeight())))

	status := "tab: switch view • ctrl+s: save • esc: quit"
	if p.status != "" {
		status = p.status + " • " + status
	}
	body := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, left, right),
		statusStyle.Render(status),
	)
	v := tea.NewView(body)
	v.AltScreen = true
	return v
}

func (p *playground) refresh() {
	p.output, p.err = compileScript(p.editor.Value(), p.mode)
}

func (p *playground) save() {
	if p.file == "" {
		p.status = "no file to save"
		return
	}
	if err := os.WriteFile(p.file, []byte(p.editor.Value()), 0o644); err != nil {
		p.status = err.Error()
		return
	}
	p.status = fmt.Sprintf("%s saved", p.file)
}

func (p playground) paneWidth() int {
	return max(p.width/2-4, 20)
}

func (p playground) paneHeight() int {
	return max(p.height-5, 5)
}

func compileScript(script string, mode viewMode) (string, error) {
	if strings.TrimSpace(script) == "" {
		return "", nil
	}
	doc, err := slax.ParseString(script)
	if err != nil {
		return "", err
	}
	if mode == viewXslt {
		return xml.WriteDocument(doc, 0)
	}
	str, count, err := slax.WriteDocument(doc, "")
	if err == nil && count > 0 {
		err = fmt.Errorf("%d expression(s) could not be written", count)
	}
	return str, err
}

func clip(str string, lines int) string {
	var (
		buf strings.Builder
		n   int
	)
	for line := range strings.Lines(str) {
		if n >= lines {
			break
		}
		io.WriteString(&buf, line)
		n++
	}
	return strings.TrimRight(buf.String(), "\n")
}
