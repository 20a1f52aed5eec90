package assistant

import (
	"fmt"
	"strings"

	"trs80/pkg/basic"
	"trs80/pkg/machine"
)

const (
	arrayPreview  = 10
	deepGosub     = 10
	reportHeader  = "=== TRS-80 BASIC PROGRAM STATE REPORT ==="
	reportTrailer = "=== END PROGRAM STATE REPORT ==="
)

func yesNo(b bool) string {
	if b {
		return "YES"
	}
	return "NO"
}

func describe(v basic.Value) string {
	if v.IsString() {
		return fmt.Sprintf("%q (String)", v.Str)
	}
	return basic.FormatNumber(v.Num) + " (Numeric)"
}

// FormatState renders a snapshot as the plain-text report attached to
// assistant prompts, followed by the static analysis of its listing.
func FormatState(s machine.Snapshot) string {
	var b strings.Builder
	b.WriteString(reportHeader + "\n\n")

	b.WriteString("EXECUTION STATUS:\n")
	fmt.Fprintf(&b, "  State: %s\n", s.State)
	fmt.Fprintf(&b, "  Program Running: %s\n", yesNo(s.Running))
	fmt.Fprintf(&b, "  Waiting for Input: %s\n", yesNo(s.State == machine.AwaitingInput.String()))
	if s.Error != "" {
		fmt.Fprintf(&b, "  Last Error: %s\n", s.Error)
	}
	b.WriteString("\n")

	b.WriteString("CURRENT EXECUTION CONTEXT:\n")
	if len(s.Context) == 0 {
		b.WriteString("  Program execution completed or not started\n")
	} else {
		fmt.Fprintf(&b, "  Current Line: %s\n", s.Line)
		for _, st := range s.Context {
			if st.Key.String() == s.Line {
				fmt.Fprintf(&b, "  > %s  <- CURRENT\n", st)
			} else {
				fmt.Fprintf(&b, "    %s\n", st)
			}
		}
	}
	b.WriteString("\n")

	b.WriteString("COMPLETE PROGRAM:\n")
	if len(s.Listing) == 0 {
		b.WriteString("  No program loaded\n")
	}
	for _, l := range s.Listing {
		fmt.Fprintf(&b, "  %s\n", l)
	}
	b.WriteString("\n")

	b.WriteString("VARIABLES STATE:\n")
	if len(s.Variables) == 0 {
		b.WriteString("  No scalar variables defined\n")
	} else {
		b.WriteString("  Scalar Variables:\n")
		for _, v := range s.Variables {
			fmt.Fprintf(&b, "    %s = %s\n", v.Name, describe(v.Value))
		}
	}
	if len(s.Arrays) == 0 {
		b.WriteString("  No array variables defined\n")
	} else {
		b.WriteString("  Array Variables:\n")
		for _, a := range s.Arrays {
			kind := "Numeric Array"
			if basic.IsStringName(a.Name) {
				kind = "String Array"
			}
			fmt.Fprintf(&b, "    %s = %s, Size: %d\n", a.Name, kind, len(a.Values))
			for i, v := range a.Values[:min(len(a.Values), arrayPreview)] {
				fmt.Fprintf(&b, "      [%d] = %s\n", i, v.Quote())
			}
			if n := len(a.Values) - arrayPreview; n > 0 {
				fmt.Fprintf(&b, "      ... and %d more elements\n", n)
			}
		}
	}
	b.WriteString("\n")

	b.WriteString("CONTROL FLOW STATE:\n")
	if len(s.ForStack) == 0 {
		b.WriteString("  No active FOR loops\n")
	} else {
		b.WriteString("  Active FOR Loops:\n")
		for _, f := range s.ForStack {
			fmt.Fprintf(&b, "    FOR %s = %s TO %s STEP %s\n", f.Var,
				basic.FormatNumber(f.Current), basic.FormatNumber(f.End), basic.FormatNumber(f.Step))
			fmt.Fprintf(&b, "      Loop body resumes at line %s\n", f.Resume)
		}
	}
	if len(s.GosubStack) == 0 {
		b.WriteString("  No active GOSUB calls\n")
	} else {
		b.WriteString("  GOSUB Stack (return addresses):\n")
		for i := range s.GosubStack {
			fmt.Fprintf(&b, "    Level %d: Return to line %s\n", i+1, s.GosubStack[len(s.GosubStack)-1-i])
		}
	}
	b.WriteString("\n")

	b.WriteString("DATA HANDLING STATE:\n")
	if len(s.Data) == 0 {
		b.WriteString("  No DATA values defined\n")
	} else {
		fmt.Fprintf(&b, "  DATA Values Available: %d\n", len(s.Data))
		fmt.Fprintf(&b, "  Current DATA Pointer: %d\n", s.DataPtr)
		fmt.Fprintf(&b, "  Remaining DATA Items: %d\n", max(len(s.Data)-s.DataPtr, 0))
		for i, d := range s.Data {
			status := "UNREAD"
			if i < s.DataPtr {
				status = "READ"
			}
			marker := ""
			if i == s.DataPtr {
				marker = " <- NEXT"
			}
			fmt.Fprintf(&b, "    [%d] = %s (%s)%s\n", i, d, status, marker)
		}
	}
	b.WriteString("\n")

	b.WriteString("SCREEN AND I/O STATE:\n")
	fmt.Fprintf(&b, "  Cursor Position: Row %d, Column %d\n", s.CursorRow, s.CursorCol)
	if s.LastKey == "" {
		b.WriteString("  Last Key Pressed: None\n")
	} else {
		fmt.Fprintf(&b, "  Last Key Pressed: %q\n", s.LastKey)
	}
	if len(s.Screen) == 0 {
		b.WriteString("  Screen Content: Empty\n")
	} else {
		b.WriteString("  Screen Content (non-empty lines):\n")
		for _, r := range s.Screen {
			fmt.Fprintf(&b, "    Row %2d: %q\n", r.Row, r.Text)
		}
	}
	b.WriteString("\n")

	if s.Tape != "" {
		b.WriteString("TAPE/FILE OPERATIONS:\n")
		fmt.Fprintf(&b, "  Tape File: %s\n", s.Tape)
		fmt.Fprintf(&b, "  Tape Pointer: %d\n", s.TapePos)
		b.WriteString("\n")
	}

	b.WriteString("RUNTIME ISSUES TO CHECK:\n")
	checks := runtimeChecks(s)
	if len(checks) == 0 {
		b.WriteString("  No obvious runtime issues detected\n")
	}
	for _, c := range checks {
		fmt.Fprintf(&b, "  ! %s\n", c)
	}
	b.WriteString("\n")

	lines := make([]string, len(s.Listing))
	for i, l := range s.Listing {
		lines[i] = l.String()
	}
	b.WriteString(Analyze(lines).String())
	b.WriteString("\n" + reportTrailer + "\n")
	return b.String()
}

func runtimeChecks(s machine.Snapshot) []string {
	var out []string
	for _, iss := range s.Issues {
		out = append(out, iss.String())
	}
	for _, f := range s.ForStack {
		switch {
		case f.Step == 0:
			out = append(out, fmt.Sprintf("FOR loop variable %s has zero step - infinite loop risk", f.Var))
		case f.Step > 0 && f.Current > f.End:
			out = append(out, fmt.Sprintf("FOR loop variable %s may have overshot its end value", f.Var))
		case f.Step < 0 && f.Current < f.End:
			out = append(out, fmt.Sprintf("FOR loop variable %s may have undershot its end value", f.Var))
		}
	}
	if len(s.Data) > 0 && s.DataPtr >= len(s.Data) {
		out = append(out, "DATA pointer is beyond available data - READ statements may fail")
	}
	if len(s.GosubStack) > deepGosub {
		out = append(out, "GOSUB stack is very deep - possible infinite recursion")
	}
	return out
}
