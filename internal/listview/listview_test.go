package listview_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/campus-resources/internal/listview"
)

func TestListView(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "ListView Suite")
}

type row struct {
	ID int64
}

func (r row) GetID() int64 { return r.ID }

func rows(n int) []row {
	out := make([]row, n)
	for i := range out {
		out[i] = row{ID: int64(i + 1)}
	}
	return out
}

var _ = Describe("Pagination", func() {
	It("should slice the requested window", func() {
		Expect(listview.Paginate(rows(23), 3, 10)).To(Equal([]row{{21}, {22}, {23}}))
		Expect(listview.Paginate(rows(23), 1, 10)).To(HaveLen(10))
	})

	It("should return an empty window out of range", func() {
		Expect(listview.Paginate(rows(5), 2, 10)).To(BeEmpty())
		Expect(listview.Paginate(rows(5), 0, 10)).To(BeEmpty())
	})

	It("should round the page count up", func() {
		Expect(listview.TotalPages(23, 10)).To(Equal(3))
		Expect(listview.TotalPages(20, 10)).To(Equal(2))
		Expect(listview.TotalPages(0, 10)).To(Equal(0))
	})
})

var _ = Describe("Selection", func() {
	var s *listview.Selection

	BeforeEach(func() {
		s = listview.NewSelection()
	})

	It("should compute the header state against visible ids", func() {
		visible := []int64{1, 2, 3}
		Expect(s.Header(visible)).To(Equal(listview.HeaderUnchecked))

		s.Toggle(2)
		Expect(s.Header(visible)).To(Equal(listview.HeaderIndeterminate))

		s.Toggle(1)
		s.Toggle(3)
		Expect(s.Header(visible)).To(Equal(listview.HeaderChecked))
	})

	It("should select all and then clear all in scope", func() {
		s.Toggle(9)
		s.ToggleAll([]int64{1, 2})
		Expect(s.IDs()).To(Equal([]int64{1, 2, 9}))

		s.ToggleAll([]int64{1, 2})
		Expect(s.IDs()).To(Equal([]int64{9}))
	})

	It("should return ids sorted", func() {
		s.Set(5, true)
		s.Set(1, true)
		s.Set(3, true)
		Expect(s.IDs()).To(Equal([]int64{1, 3, 5}))
	})
})

var _ = Describe("Table", func() {
	var table *listview.Table[row]

	BeforeEach(func() {
		table = listview.NewTable[row](10, listview.ScopePage)
		table.SetItems(rows(23))
	})

	It("should show the last partial page", func() {
		table.GoTo(3)
		Expect(table.VisibleIDs()).To(Equal([]int64{21, 22, 23}))
		Expect(table.TotalPages()).To(Equal(3))
	})

	It("should clamp pages past the end", func() {
		table.GoTo(9)
		Expect(table.Page()).To(Equal(3))
	})

	It("should clear the selection when the page changes", func() {
		table.Toggle(1)
		table.GoTo(2)
		Expect(table.Selected()).To(BeEmpty())
	})

	It("should keep the selection when staying on the same page", func() {
		table.Toggle(1)
		table.GoTo(1)
		Expect(table.Selected()).To(Equal([]int64{1}))
	})

	It("should drop selected ids that disappear on refresh", func() {
		table.Toggle(1)
		table.Toggle(2)
		table.SetItems(rows(23)[1:])
		Expect(table.Selected()).To(Equal([]int64{2}))
	})

	It("should reset page and selection on a new dataset", func() {
		table.GoTo(2)
		table.Toggle(11)
		table.Reset(rows(4))
		Expect(table.Page()).To(Equal(1))
		Expect(table.Selected()).To(BeEmpty())
		Expect(table.Total()).To(Equal(4))
	})

	It("should select only the visible page in page scope", func() {
		table.GoTo(3)
		table.ToggleAll()
		Expect(table.Selected()).To(Equal([]int64{21, 22, 23}))
		Expect(table.Header()).To(Equal(listview.HeaderChecked))
	})

	It("should select the whole dataset in dataset scope", func() {
		all := listview.NewTable[row](10, listview.ScopeDataset)
		all.SetItems(rows(23))
		all.ToggleAll()
		Expect(all.Selected()).To(HaveLen(23))
		Expect(all.SelectedRows()).To(HaveLen(23))
	})

	It("should treat a server window as the visible page", func() {
		remote := listview.NewTable[row](10, listview.ScopePage)
		remote.GoTo(3)
		remote.SetWindow([]row{{21}, {22}, {23}}, 23)
		Expect(remote.Page()).To(Equal(3))
		Expect(remote.VisibleIDs()).To(Equal([]int64{21, 22, 23}))
		Expect(remote.Total()).To(Equal(23))
	})
})

var _ = Describe("StatusColor", func() {
	DescribeTable("maps statuses to badge colors",
		func(status, color string) {
			Expect(listview.StatusColor(status)).To(Equal(color))
		},
		Entry("approved", "Approved", "green"),
		Entry("pending", "Pending", "yellow"),
		Entry("rejected", "Rejected", "red"),
		Entry("unknown", "Something", "gray"),
	)
})
