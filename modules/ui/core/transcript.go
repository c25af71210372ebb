package core

import (
	"encoding/json"
	"fmt"
	"sort"

	"pilotdeck/modules/platform/protocol"
)

// frameForProject reports whether a frame belongs to the project in
// view. Untagged frames are session-global and show everywhere.
func frameForProject(f *protocol.Frame, projectID string) bool {
	return f.ProjectStateID == "" || f.ProjectStateID == projectID
}

// BuildTranscript folds the frame log into transcript entries for one
// project, in receipt order. Stream chunks coalesce into a single
// growing entry per source; a message from the same source finalizes
// the open entry. Informational frames become muted system lines;
// frames bound to the tasks and files tabs are skipped here.
func BuildTranscript(frames []*protocol.Frame, projectID string) []ChatEntryVM {
	entries := make([]ChatEntryVM, 0, len(frames))
	open := make(map[string]int) // source -> index of its growing stream entry

	for _, f := range frames {
		if !frameForProject(f, projectID) {
			continue
		}

		switch f.Type {
		case protocol.MsgStream:
			if f.Chunk == "" {
				// End-of-stream marker
				if idx, ok := open[f.Source]; ok {
					entries[idx].Streaming = false
					delete(open, f.Source)
				}
				continue
			}
			if idx, ok := open[f.Source]; ok {
				entries[idx].Content += f.Chunk
				continue
			}
			entries = append(entries, ChatEntryVM{
				Kind:       EntryStream,
				Source:     f.Source,
				SourceName: f.DisplaySource(),
				Content:    f.Chunk,
				Streaming:  true,
			})
			open[f.Source] = len(entries) - 1

		case protocol.MsgMessage:
			if idx, ok := open[f.Source]; ok {
				entries[idx].Streaming = false
				delete(open, f.Source)
			}
			if f.Message == "" {
				continue
			}
			entries = append(entries, ChatEntryVM{
				Kind:       EntryMessage,
				Source:     f.Source,
				SourceName: f.DisplaySource(),
				Content:    f.Message,
			})

		case protocol.MsgQuestion:
			entries = append(entries, ChatEntryVM{
				Kind:       EntryQuestion,
				Source:     f.Source,
				SourceName: f.DisplaySource(),
				Content:    f.Question,
			})

		case protocol.MsgEpicsAndTasks, protocol.MsgTaskProgress,
			protocol.MsgStepProgress, protocol.MsgModifiedFiles,
			protocol.MsgFileStatus:
			// Rendered by the tasks/files tabs, not the transcript

		default:
			if line := SystemLine(f); line != "" {
				entries = append(entries, ChatEntryVM{
					Kind:    EntrySystem,
					Source:  string(f.Type),
					Content: line,
				})
			}
		}
	}

	return entries
}

// SystemLine renders an informational frame as a one-line transcript
// entry. Unknown types fall through to a generic label so nothing the
// backend sends is invisible. The console reuses it for its muted
// system lines.
func SystemLine(f *protocol.Frame) string {
	switch f.Type {
	case protocol.MsgProjectStage:
		var payload struct {
			Stage string `json:"stage"`
		}
		if err := json.Unmarshal(f.Data, &payload); err == nil && payload.Stage != "" {
			return "Stage: " + payload.Stage
		}
		return "Stage changed"
	case protocol.MsgRunCommand:
		return "Run command: " + f.RunCommand
	case protocol.MsgAppLink:
		return "App available at " + f.AppLink
	case protocol.MsgOpenEditor:
		if f.Line > 0 {
			return fmt.Sprintf("Open %s:%d", f.Path, f.Line)
		}
		return "Open " + f.Path
	case protocol.MsgLoadingFinished:
		return "Project loaded."
	case protocol.MsgAppFinished:
		return "App development finished."
	case protocol.MsgFeatureFinished:
		return "Feature finished."
	case protocol.MsgKeyExpired:
		return "API key expired."
	case protocol.MsgProjectDescription, protocol.MsgFeaturesList,
		protocol.MsgTestInstructions:
		if f.Message != "" {
			return f.Message
		}
		return labelFor(f.Type)
	default:
		return labelFor(f.Type)
	}
}

func labelFor(t protocol.MessageType) string {
	return "[" + string(t) + "]"
}

// BuildProgress folds stage and task frames into the tasks tab view
// model. Each epics_and_tasks frame replaces the previous breakdown;
// task_progress and step_progress track the newest position.
func BuildProgress(frames []*protocol.Frame, projectID string) ProgressVM {
	var vm ProgressVM

	for _, f := range frames {
		if !frameForProject(f, projectID) {
			continue
		}

		switch f.Type {
		case protocol.MsgProjectStage:
			var payload struct {
				Stage string `json:"stage"`
			}
			if err := json.Unmarshal(f.Data, &payload); err == nil {
				vm.Stage = payload.Stage
			}

		case protocol.MsgEpicsAndTasks:
			vm.Epics = make([]EpicVM, 0, len(f.Epics))
			for _, e := range f.Epics {
				vm.Epics = append(vm.Epics, EpicVM{
					Name:        e.Name,
					Description: e.Description,
					Completed:   e.Completed,
				})
			}
			vm.Tasks = taskVMs(f.Tasks)

		case protocol.MsgTaskProgress:
			vm.TaskIndex = f.Index
			vm.TaskCount = f.NTasks
			vm.CurrentTask = f.Description
			vm.TaskStatus = f.Status
			if len(f.Tasks) > 0 {
				vm.Tasks = taskVMs(f.Tasks)
			}

		case protocol.MsgStepProgress:
			vm.StepIndex = f.Index
			vm.StepCount = f.NSteps
		}
	}

	return vm
}

func taskVMs(tasks []protocol.Task) []TaskVM {
	out := make([]TaskVM, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, TaskVM{Description: t.Description, Status: t.Status})
	}
	return out
}

// BuildFiles folds file frames into the files tab view model. Each
// modified_files frame replaces the set (newest wins); file_status
// frames update the status of a listed file.
func BuildFiles(frames []*protocol.Frame, projectID string) []FileVM {
	var files []FileVM

	for _, f := range frames {
		if !frameForProject(f, projectID) {
			continue
		}

		switch f.Type {
		case protocol.MsgModifiedFiles:
			files = parseFileList(f.Files)

		case protocol.MsgFileStatus:
			if f.Path == "" {
				continue
			}
			for i := range files {
				if files[i].Path == f.Path {
					files[i].Status = f.Status
					break
				}
			}
		}
	}

	return files
}

// parseFileList accepts both shapes the backend uses for file sets:
// a plain array of paths or an array of objects with a path field.
func parseFileList(raw json.RawMessage) []FileVM {
	if len(raw) == 0 {
		return nil
	}

	var paths []string
	if err := json.Unmarshal(raw, &paths); err == nil {
		files := make([]FileVM, 0, len(paths))
		for _, p := range paths {
			files = append(files, FileVM{Path: p})
		}
		return files
	}

	var objs []struct {
		Path string `json:"path"`
	}
	if err := json.Unmarshal(raw, &objs); err == nil {
		files := make([]FileVM, 0, len(objs))
		for _, o := range objs {
			if o.Path != "" {
				files = append(files, FileVM{Path: o.Path})
			}
		}
		return files
	}

	return nil
}

// QuestionToVM converts a pending question frame for display. Button
// order is deterministic: the default choice first, the rest sorted
// by key.
func QuestionToVM(f *protocol.Frame) *QuestionVM {
	if f == nil || !f.IsQuestion() {
		return nil
	}

	vm := &QuestionVM{
		ID:          f.QuestionID,
		Text:        f.Question,
		ButtonsOnly: f.ButtonsOnly,
		AllowEmpty:  f.AllowEmpty,
		FullScreen:  f.FullScreen,
		Default:     f.Default,
		Placeholder: f.Placeholder,
		Hint:        f.Hint,
		InitialText: f.InitialText,
		SourceName:  f.DisplaySource(),
	}

	if len(f.Buttons) > 0 {
		keys := make([]string, 0, len(f.Buttons))
		for k := range f.Buttons {
			if k == f.Default {
				continue
			}
			keys = append(keys, k)
		}
		sort.Strings(keys)
		if _, ok := f.Buttons[f.Default]; ok {
			keys = append([]string{f.Default}, keys...)
		}

		vm.Buttons = make([]ButtonVM, 0, len(keys))
		for _, k := range keys {
			vm.Buttons = append(vm.Buttons, ButtonVM{Key: k, Label: f.Buttons[k]})
		}
	}

	return vm
}
