package prep

import "strings"

// TaskScriptBuilder appends the contents of a task.sh script into the
// strings.Builder it was created with; the caller reads the finished
// script from that builder.
type TaskScriptBuilder struct {
	buf *strings.Builder
}

// NewTaskScriptBuilder creates a TaskScriptBuilder writing into buf.
func NewTaskScriptBuilder(buf *strings.Builder) *TaskScriptBuilder {
	return &TaskScriptBuilder{buf: buf}
}

// WritePrefix resets buf and writes the shebang and strict-mode line every
// task.sh starts with.
func (b *TaskScriptBuilder) WritePrefix() {
	b.buf.Reset()
	b.buf.WriteString("#!/usr/bin/env bash\nset -xeuo pipefail\n\n")
}

// WriteAssignmentLine appends a single shell variable assignment.
func (b *TaskScriptBuilder) WriteAssignmentLine(varName, varVal string) {
	b.buf.WriteString(varName)
	b.buf.WriteByte('=')
	if varVal == "" {
		b.buf.WriteString("\"\"")
	} else {
		b.buf.WriteString(varVal)
	}
	b.buf.WriteByte('\n')
}

// WriteModuleTaskSuffix cds into the module directory, runs code, copies
// src[i] back to tgt[i] for every output, then exits.
func (b *TaskScriptBuilder) WriteModuleTaskSuffix(code, moduleDir string, src, tgt []string) {
	b.writeCdToModule(moduleDir)
	b.writeCode(code)
	b.writeCopyModuleFiles(src, tgt)
	b.writeExit()
}

// WriteNormalTaskSuffix runs code then exits, for a task with no module.
func (b *TaskScriptBuilder) WriteNormalTaskSuffix(code string) {
	b.writeCode(code)
	b.writeExit()
}

func (b *TaskScriptBuilder) writeCdToModule(moduleDir string) {
	b.buf.WriteString("\n# This is a module task, so we cd to the module directory before running it:\n")
	b.buf.WriteString("cd ")
	b.buf.WriteString(moduleDir)
	b.buf.WriteByte('\n')
}

func (b *TaskScriptBuilder) writeCode(code string) {
	b.buf.WriteString(code)
}

func (b *TaskScriptBuilder) writeCopyModuleFiles(src, tgt []string) {
	b.buf.WriteString("\n# Copy all outputs in module directory back to artifacts directory:\n")
	for i := range src {
		b.buf.WriteString("cp -r ")
		b.buf.WriteString(src[i])
		b.buf.WriteByte(' ')
		b.buf.WriteString(tgt[i])
		b.buf.WriteByte('\n')
	}
}

func (b *TaskScriptBuilder) writeExit() {
	b.buf.WriteString("\nexit 0\n")
}
