package bits

import "github.com/puffyCid/artemis-sub004/pkg/ese"

// ParseESE joins the modern ESE-backed BITS queue's Jobs and Files tables,
// producing one BitsInfo per job with its files attached. The join key is
// the JobId column of each Files row matched against the job's JobId; the
// FileId column is decoded but not used for the join.
func ParseESE(jobRows, fileRows []ese.Row) []BitsInfo {
	filesByJob := make(map[string][]FileInfo)
	for _, fr := range fileRows {
		fi := decodeESEFile(fr, false)
		filesByJob[fi.JobID] = append(filesByJob[fi.JobID], fi)
	}

	var out []BitsInfo
	for _, jr := range jobRows {
		job := decodeESEJob(jr, false)
		out = append(out, BitsInfo{Job: job, Files: filesByJob[job.JobID]})
	}
	return out
}

func decodeESEJob(r ese.Row, carved bool) JobInfo {
	return JobInfo{
		JobID:       ese.GUIDText(r, "JobId"),
		Name:        r.Text("Name"),
		Description: r.Text("Description"),
		Type:        r.Uint32("Type"),
		State:       JobState(r.Uint32("State")),
		Created:     zeroIfUnset(r.Uint64("CreationTime")),
		Modified:    zeroIfUnset(r.Uint64("ModifiedTime")),
		Carved:      carved,
	}
}

func decodeESEFile(r ese.Row, carved bool) FileInfo {
	return FileInfo{
		FileID:         ese.GUIDText(r, "FileId"),
		JobID:          ese.GUIDText(r, "JobId"),
		RemoteName:     r.Text("RemoteName"),
		TmpFullPath:    r.Text("TempFileName"),
		DestFullPath:   r.Text("LocalName"),
		DownloadedSize: r.Uint64("TransferredSize"),
		TotalSize:      r.Uint64("FileSize"),
		Carved:         carved,
	}
}

// CarveESE decodes Jobs and Files rows the caller has already recovered
// from deleted space, flagging every result carved. It does not scan raw
// qmgr.db bytes itself. Job and file records are returned as two
// independent slices and are not joined.
func CarveESE(jobRows, fileRows []ese.Row) (jobs []JobInfo, files []FileInfo) {
	for _, jr := range jobRows {
		jobs = append(jobs, decodeESEJob(jr, true))
	}
	for _, fr := range fileRows {
		files = append(files, decodeESEFile(fr, true))
	}
	return jobs, files
}
