/*
section.go - Section and group boundary tracking

PURPOSE:
  Decides where section (and nested group) boundaries fall across an
  ordered row sequence. Whether a row opens a new section is a pure
  function of (previous row's key, current row's key), evaluated in one
  sequential pass over the rows.

MEMO:
  Rendered output traverses the same compiled row order more than once
  (HTML preview, then CSV). The tracker memoises Retrieve results per task
  so replays return byte-identical boundaries, and Reset() clears the memo
  for a genuinely fresh traversal. The memo is per-Report owned state -
  never a process-wide singleton.
*/
package report

// Section is a contiguous run of rows sharing a grouping key. It owns its
// own accumulator plus per-column and per-user subtotals.
type Section struct {
	Key     string
	Title   string
	Project *Project

	Hours       *HourAccumulator
	ColumnHours map[string]*HourAccumulator // by column key
	UserHours   map[string]*HourAccumulator // by user ID
}

func makeSection(key, title string, project *Project) *Section {
	return &Section{
		Key:         key,
		Title:       title,
		Project:     project,
		Hours:       NewHourAccumulator(),
		ColumnHours: make(map[string]*HourAccumulator),
		UserHours:   make(map[string]*HourAccumulator),
	}
}

func (s *Section) addEntry(columnKey string, entry WorkEntry) {
	s.Hours.Add(entry.Hours, entry.Committed)
	col, ok := s.ColumnHours[columnKey]
	if !ok {
		col = NewHourAccumulator()
		s.ColumnHours[columnKey] = col
	}
	col.Add(entry.Hours, entry.Committed)
	user, ok := s.UserHours[entry.UserID]
	if !ok {
		user = NewHourAccumulator()
		s.UserHours[entry.UserID] = user
	}
	user.Add(entry.Hours, entry.Committed)
}

// Group is a nested run inside a section (grouping mode "both" only).
type Group struct {
	Key   string
	Label string
	Hours *HourAccumulator
}

// SectionTracker computes section/group membership for rows in traversal
// order. One tracker belongs to exactly one Report.
type SectionTracker struct {
	mode     GroupingMode
	projects map[string]*Project

	sections []*Section
	groups   []*Group

	memo map[string]sectionMemo // task ID -> memoised result

	prevSectionKey string
	prevGroupKey   string
	started        bool
}

type sectionMemo struct {
	section    *Section
	newSection bool
	group      *Group
	newGroup   bool
}

// NewSectionTracker builds a tracker for the given grouping mode. The
// projects map is shared, read-only metadata.
func NewSectionTracker(mode GroupingMode, projects map[string]*Project) *SectionTracker {
	return &SectionTracker{
		mode:     mode,
		projects: projects,
		memo:     make(map[string]sectionMemo),
	}
}

// Reset starts a fresh traversal: boundary state and memo are cleared but
// already-created sections (and their accumulated subtotals) survive, keyed
// identically, so a re-walk lands in the same sections.
func (t *SectionTracker) Reset() {
	t.memo = make(map[string]sectionMemo)
	t.prevSectionKey = ""
	t.prevGroupKey = ""
	t.started = false
}

// Sections returns the sections in first-seen (row) order.
func (t *SectionTracker) Sections() []*Section { return t.sections }

// Retrieve is called once per row per traversal, in row order. Replaying a
// task already seen this traversal returns the memoised result unchanged.
func (t *SectionTracker) Retrieve(task *Task) (section *Section, newSection bool, group *Group, newGroup bool) {
	if m, ok := t.memo[task.ID]; ok {
		return m.section, m.newSection, m.group, m.newGroup
	}

	sectionKey := t.sectionKey(task)
	newSection = !t.started || sectionKey != t.prevSectionKey

	section = t.findSection(sectionKey)
	if section == nil {
		project := t.projects[task.ProjectID]
		title := ""
		if project != nil {
			title = project.SectionTitle()
		}
		section = makeSection(sectionKey, title, project)
		t.sections = append(t.sections, section)
	}

	if t.mode == GroupingBoth {
		groupKey := sectionKey + "/" + activeLabel(task.Active)
		newGroup = newSection || groupKey != t.prevGroupKey
		group = t.findGroup(groupKey)
		if group == nil {
			group = &Group{Key: groupKey, Label: activeLabel(task.Active), Hours: NewHourAccumulator()}
			t.groups = append(t.groups, group)
		}
		t.prevGroupKey = groupKey
	}

	t.prevSectionKey = sectionKey
	t.started = true
	t.memo[task.ID] = sectionMemo{section: section, newSection: newSection, group: group, newGroup: newGroup}
	return section, newSection, group, newGroup
}

// sectionKey widens the project boundary with billable/active flags
// depending on the grouping mode.
func (t *SectionTracker) sectionKey(task *Task) string {
	key := task.ProjectID
	switch t.mode {
	case GroupingBillable, GroupingBoth:
		key += "/" + billableLabel(task.Billable)
	case GroupingActive:
		key += "/" + activeLabel(task.Active)
	}
	return key
}

func (t *SectionTracker) findSection(key string) *Section {
	for _, s := range t.sections {
		if s.Key == key {
			return s
		}
	}
	return nil
}

func (t *SectionTracker) findGroup(key string) *Group {
	for _, g := range t.groups {
		if g.Key == key {
			return g
		}
	}
	return nil
}

func billableLabel(b bool) string {
	if b {
		return "billable"
	}
	return "non-billable"
}

func activeLabel(a bool) string {
	if a {
		return "active"
	}
	return "inactive"
}
