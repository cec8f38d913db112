package support

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"github.com/qalam-ocr/qalam/cmd/qalam/cmd"
)

// RegisterScoreSteps registers step definitions for the score command.
func (testCtx *TestContext) RegisterScoreSteps(sc *godog.ScenarioContext) {
	sc.Step(`^I score the text "([^"]*)" against the reference "([^"]*)"$`, testCtx.iScoreText)
	sc.Step(`^I score the text "([^"]*)" against the reference "([^"]*)" as JSON$`, testCtx.iScoreTextJSON)
	sc.Step(`^I score a file containing "([^"]*)" against a reference file containing "([^"]*)"$`,
		testCtx.iScoreFiles)
	sc.Step(`^the command should succeed$`, testCtx.theCommandShouldSucceed)
	sc.Step(`^the command should fail$`, testCtx.theCommandShouldFail)
	sc.Step(`^the output should contain "([^"]*)"$`, testCtx.theOutputShouldContain)
	sc.Step(`^the reported "([^"]*)" should be ([0-9.]+)$`, testCtx.theReportedFieldShouldBe)
	sc.Step(`^the reported "([^"]*)" should include "([^"]*)"$`, testCtx.theReportedFieldShouldInclude)
}

// runQalam executes the root command in-process with the given arguments.
func (testCtx *TestContext) runQalam(args ...string) {
	root := cmd.GetRootCommand()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)

	start := time.Now()
	testCtx.LastError = root.Execute()
	testCtx.LastDuration = time.Since(start)
	testCtx.LastArgs = args
	testCtx.LastOutput = buf.String()
	testCtx.LastReport = nil
}

func (testCtx *TestContext) iScoreText(extracted, reference string) error {
	testCtx.runQalam("score", "--extracted", extracted, "--reference", reference, "--format", "text")
	return nil
}

func (testCtx *TestContext) iScoreTextJSON(extracted, reference string) error {
	testCtx.runQalam("score", "--extracted", extracted, "--reference", reference, "--format", "json")
	if testCtx.LastError != nil {
		return nil
	}
	var report map[string]any
	if err := json.Unmarshal([]byte(testCtx.LastOutput), &report); err != nil {
		return fmt.Errorf("failed to parse JSON output: %w\noutput: %s", err, testCtx.LastOutput)
	}
	testCtx.LastReport = report
	return nil
}

func (testCtx *TestContext) iScoreFiles(extracted, reference string) error {
	extPath := filepath.Join(testCtx.TempDir, "extracted.txt")
	refPath := filepath.Join(testCtx.TempDir, "reference.txt")
	if err := os.WriteFile(extPath, []byte(extracted), 0o644); err != nil {
		return err
	}
	if err := os.WriteFile(refPath, []byte(reference), 0o644); err != nil {
		return err
	}
	testCtx.CreatedFiles = append(testCtx.CreatedFiles, extPath, refPath)

	testCtx.runQalam("score",
		"--extracted", "", "--reference", "",
		"--extracted-file", extPath, "--reference-file", refPath,
		"--format", "text")
	return nil
}

func (testCtx *TestContext) theCommandShouldSucceed() error {
	if testCtx.LastError != nil {
		return fmt.Errorf("expected success, got error: %v\noutput: %s", testCtx.LastError, testCtx.LastOutput)
	}
	return nil
}

func (testCtx *TestContext) theCommandShouldFail() error {
	if testCtx.LastError == nil {
		return fmt.Errorf("expected failure, command succeeded\noutput: %s", testCtx.LastOutput)
	}
	return nil
}

func (testCtx *TestContext) theOutputShouldContain(expected string) error {
	if !strings.Contains(testCtx.LastOutput, expected) {
		return fmt.Errorf("output does not contain %q\noutput: %s", expected, testCtx.LastOutput)
	}
	return nil
}

func (testCtx *TestContext) theReportedFieldShouldBe(field string, expected float64) error {
	value, err := testCtx.reportField(field)
	if err != nil {
		return err
	}
	num, ok := value.(float64)
	if !ok {
		return fmt.Errorf("field %q is %T, not a number", field, value)
	}
	if math.Abs(num-expected) > 1e-6 {
		return fmt.Errorf("field %q is %v, expected %v", field, num, expected)
	}
	return nil
}

func (testCtx *TestContext) theReportedFieldShouldInclude(field, expected string) error {
	value, err := testCtx.reportField(field)
	if err != nil {
		return err
	}
	switch v := value.(type) {
	case string:
		if !strings.Contains(v, expected) {
			return fmt.Errorf("field %q is %q, expected it to include %q", field, v, expected)
		}
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s == expected {
				return nil
			}
		}
		return fmt.Errorf("field %q %v does not include %q", field, v, expected)
	default:
		return fmt.Errorf("field %q is %T, not a string or list", field, value)
	}
	return nil
}

func (testCtx *TestContext) reportField(field string) (any, error) {
	if testCtx.LastReport == nil {
		return nil, fmt.Errorf("no JSON report captured, run a JSON scoring step first")
	}
	value, ok := testCtx.LastReport[field]
	if !ok {
		return nil, fmt.Errorf("field %q not present in report: %v", field, testCtx.LastReport)
	}
	return value, nil
}
